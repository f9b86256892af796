package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/metrics"
	"github.com/aretw0/intake/internal/runtime"
	"github.com/aretw0/intake/internal/telemetry"
	"github.com/aretw0/intake/pkg/adapters/file"
	httpAdapter "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/aretw0/intake/pkg/adapters/logsink"
	"github.com/aretw0/intake/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/adapters/sheets"
	"github.com/aretw0/intake/pkg/adapters/sqlite"
	"github.com/aretw0/intake/pkg/adapters/telegram"
	"github.com/aretw0/intake/pkg/dispatch"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/submission"
)

// LocalOperator is the notification destination used when notifications
// are printed instead of sent.
const LocalOperator = "operator"

// Options tunes how NewApp wires the process.
type Options struct {
	// Requirements are checked against the configuration before anything
	// is opened.
	Requirements config.Requirements
	// NotifyOutput receives printed notifications when no Telegram operator
	// chat is configured. Defaults to os.Stderr.
	NotifyOutput io.Writer
	// Bot replaces the Telegram connection (tests, custom endpoints).
	Bot telegram.Bot
	// Logger replaces the logger built from LOG_LEVEL and LOG_FILE.
	Logger *slog.Logger
}

// App is a fully wired agent with its transports' shared dependencies.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Form       *domain.Form
	Agent      *intake.Agent
	Dispatcher *dispatch.Dispatcher
	Metrics    *metrics.Metrics
	Streams    *httpAdapter.StreamManager
	Bot        telegram.Bot

	closers []func(context.Context) error
}

// NewApp builds the agent from cfg. Only configuration errors and
// failures of a required transport are returned; sinks that cannot be
// opened are marked unavailable and reported once.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(opts.Requirements); err != nil {
		return nil, err
	}
	app := &App{Config: cfg}

	if err := app.setupLogger(opts.Logger); err != nil {
		return nil, err
	}
	// From here on the app owns files; failures must release them.
	fail := func(err error) (*App, error) {
		_ = app.Close(ctx)
		return nil, err
	}

	shutdown, err := telemetry.Init(ctx, cfg.TraceFile, strings.TrimSpace(intake.Version))
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, shutdown)

	form, commands, texts, err := loadForm(cfg.FormFile)
	if err != nil {
		return fail(err)
	}
	app.Form = form

	var pipelineOpts []submission.Option

	// Notifier
	app.Bot = opts.Bot
	wantsTelegramNotifier := cfg.BotToken != "" && cfg.OperatorChatID != ""
	if app.Bot == nil && (opts.Requirements.Telegram || wantsTelegramNotifier) {
		bot, err := telegram.Connect(cfg.BotToken)
		if err != nil {
			if opts.Requirements.Telegram {
				return fail(err)
			}
			pipelineOpts = append(pipelineOpts, submission.NotifierUnavailable(err))
		} else {
			app.Bot = bot
		}
	}

	var notifier ports.Notifier
	destination := LocalOperator
	switch {
	case app.Bot != nil && cfg.OperatorChatID != "":
		notifier = telegram.NewNotifier(app.Bot)
		destination = cfg.OperatorChatID
	case wantsTelegramNotifier:
		// Connection failed; the pipeline skips the notifier.
	default:
		out := opts.NotifyOutput
		if out == nil {
			out = os.Stderr
		}
		notifier = logsink.New(out, app.Logger)
	}

	// Ledger
	ledger, err := app.openLedger(ctx)
	if err != nil {
		pipelineOpts = append(pipelineOpts, submission.LedgerUnavailable(err))
	}

	// Observability
	app.Metrics = metrics.New()
	app.Streams = httpAdapter.NewStreamManager(app.Logger)
	hooks := app.Metrics.Hooks().
		Merge(app.Streams.Hooks()).
		Merge(createDebugHooks(app.Logger))

	pipelineOpts = append(pipelineOpts,
		submission.WithForm(form),
		submission.WithTimeout(cfg.SinkTimeout),
		submission.WithLogger(app.Logger),
		submission.WithLifecycleHooks(hooks),
	)
	pipeline := submission.New(notifier, destination, ledger, pipelineOpts...)

	store := memory.NewStore()
	app.Metrics.WatchSessions(store.Len)

	app.Agent, err = intake.New(
		intake.WithForm(form),
		intake.WithCommands(commands),
		intake.WithTexts(texts),
		intake.WithStore(store),
		intake.WithPipeline(pipeline),
		intake.WithCatalog(file.NewCatalog(cfg.CatalogFile, "")),
		intake.WithLifecycleHooks(hooks),
		intake.WithLogger(app.Logger),
		intake.WithSubmissionCallback(app.Metrics.ObserveSubmission),
	)
	if err != nil {
		return fail(err)
	}

	app.Dispatcher = dispatch.New(app.Agent.Handle,
		dispatch.WithLogger(app.Logger),
		dispatch.WithMaxWorkers(cfg.MaxWorkers),
	)
	return app, nil
}

func (app *App) setupLogger(logger *slog.Logger) error {
	if logger != nil {
		app.Logger = logger
		return nil
	}
	level, err := logging.ParseLevel(app.Config.LogLevel)
	if err != nil {
		return err
	}
	if app.Config.LogFile == "" {
		app.Logger = logging.New(level)
		return nil
	}
	logger, closer := logging.NewFile(app.Config.LogFile, level)
	app.Logger = logger
	app.closers = append(app.closers, func(context.Context) error { return closer.Close() })
	return nil
}

// loadForm returns the built-in form unless path names a definition file.
func loadForm(path string) (*domain.Form, runtime.Commands, runtime.Texts, error) {
	if path == "" {
		return domain.DefaultForm(), runtime.DefaultCommands(), runtime.DefaultTexts(), nil
	}
	def, err := config.LoadForm(path)
	if err != nil {
		return nil, runtime.Commands{}, runtime.Texts{}, err
	}
	return def.Form, def.Commands, def.Texts, nil
}

// openLedger opens the configured backend. The returned error makes the
// ledger unavailable for the life of the process.
func (app *App) openLedger(ctx context.Context) (ports.Ledger, error) {
	cfg := app.Config
	switch cfg.LedgerBackend {
	case config.LedgerSheets:
		l, err := sheets.New(ctx, cfg.SpreadsheetID, cfg.SheetName, option.WithCredentialsFile(cfg.CredentialsFile))
		if err != nil {
			return nil, err
		}
		return l, nil

	case config.LedgerSQLite:
		l, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return l.Close() })
		return l, nil

	case config.LedgerRedis:
		l, err := redisAdapter.New(cfg.RedisURL, redisAdapter.WithStream(cfg.RedisStream))
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := l.Ping(pingCtx); err != nil {
			_ = l.Close()
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return l.Close() })
		return l, nil

	case config.LedgerMemory:
		app.Logger.Warn("memory ledger selected, rows are lost on exit")
		return memory.NewLedger(), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}

// Close stops accepting messages, waits for in-flight submissions and
// releases every opened resource.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.Dispatcher != nil {
		errs = append(errs, app.Dispatcher.Close(ctx))
	}
	if app.Agent != nil {
		errs = append(errs, app.Agent.Wait(ctx))
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i](ctx))
	}
	app.closers = nil
	return errors.Join(errs...)
}
