package intake

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/runtime"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/aretw0/intake/pkg/submission"
)

// Agent is the high-level entry point of the intake library.
// It wires the dialogue engine, the session manager and the submission
// pipeline behind a single Handle call that transports invoke per message.
type Agent struct {
	engine   *runtime.Engine
	sessions *session.Manager
	pipeline *submission.Pipeline
	catalog  ports.Catalog

	form        *domain.Form
	store       ports.SessionStore
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
	syncSubmit  bool
	onSubmitted func(domain.SubmissionResult)

	inflight sync.WaitGroup
}

// Option defines a functional option for configuring the Agent.
type Option func(*Agent)

// WithForm sets the questionnaire. Defaults to domain.DefaultForm.
func WithForm(form *domain.Form) Option {
	return func(a *Agent) {
		a.form = form
	}
}

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(a *Agent) {
		a.store = store
	}
}

// WithPipeline sets the submission pipeline. Without one, confirmed records
// are only logged.
func WithPipeline(p *submission.Pipeline) Option {
	return func(a *Agent) {
		a.pipeline = p
	}
}

// WithCatalog sets the responder for the browse catalog command.
func WithCatalog(c ports.Catalog) Option {
	return func(a *Agent) {
		a.catalog = c
	}
}

// WithCommands overrides the reserved command aliases.
func WithCommands(c runtime.Commands) Option {
	return func(a *Agent) {
		a.runtimeOpts = append(a.runtimeOpts, runtime.WithCommands(c))
	}
}

// WithTexts overrides the user-facing texts.
func WithTexts(t runtime.Texts) Option {
	return func(a *Agent) {
		a.runtimeOpts = append(a.runtimeOpts, runtime.WithTexts(t))
	}
}

// WithIDGenerator overrides how record IDs are generated.
func WithIDGenerator(gen func() string) Option {
	return func(a *Agent) {
		a.runtimeOpts = append(a.runtimeOpts, runtime.WithIDGenerator(gen))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Agent) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithClock overrides the time source for sessions and records.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.now = now
	}
}

// WithSyncSubmission makes Handle wait for the sinks before replying.
// By default submissions run in the background so the acknowledgment is
// never delayed by a slow sink.
func WithSyncSubmission() Option {
	return func(a *Agent) {
		a.syncSubmit = true
	}
}

// WithSubmissionCallback is called with the result of every submission.
func WithSubmissionCallback(fn func(domain.SubmissionResult)) Option {
	return func(a *Agent) {
		a.onSubmitted = fn
	}
}

// New initializes an Agent.
func New(opts ...Option) (*Agent, error) {
	a := &Agent{}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.form == nil {
		a.form = domain.DefaultForm()
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(a.hooks),
		runtime.WithLogger(a.logger),
		runtime.WithClock(a.now),
	}
	runtimeOpts = append(runtimeOpts, a.runtimeOpts...)

	engine, err := runtime.NewEngine(a.form, runtimeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dialogue engine: %w", err)
	}
	a.engine = engine
	a.sessions = session.NewManager(a.store, session.WithLogger(a.logger), session.WithClock(a.now))

	if a.pipeline == nil {
		a.logger.Warn("no submission pipeline configured, confirmed records are only logged")
	}
	return a, nil
}

// Handle processes one inbound message and returns the reply to render.
// Messages of the same session are serialized; the returned error is only
// set for infrastructure failures (session store), never for user input.
func (a *Agent) Handle(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	if msg.SessionKey == "" {
		return domain.Reply{}, errors.New("message has no session key")
	}

	var out runtime.Outcome
	err := a.sessions.Transact(ctx, msg.SessionKey, func(ctx context.Context, current *domain.Session) (*domain.Session, error) {
		out = a.engine.Step(ctx, current, msg)
		return out.Session, nil
	})
	if err != nil {
		return domain.Reply{}, err
	}

	reply := out.Reply
	switch out.Effect {
	case runtime.EffectCatalog:
		reply = a.attachCatalog(ctx, reply)
	case runtime.EffectSubmit:
		a.submit(ctx, *out.Record)
	}
	return reply, nil
}

func (a *Agent) attachCatalog(ctx context.Context, reply domain.Reply) domain.Reply {
	texts := a.engine.Texts()
	if a.catalog == nil {
		reply.Text = texts.CatalogMissing
		return reply
	}

	doc, err := a.catalog.Document(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Warn("catalog document not found", "err", err)
		reply.Text = texts.CatalogMissing
	case err != nil:
		a.logger.Error("failed to load catalog", "err", err)
		reply.Text = texts.CatalogFailed
	default:
		if doc.Caption == "" {
			doc.Caption = texts.CatalogCaption
		}
		// The caption travels with the document.
		reply.Text = ""
		reply.Document = doc
	}
	return reply
}

func (a *Agent) submit(ctx context.Context, rec domain.Record) {
	a.logger.Info("form confirmed", "record_id", rec.ID, "submitter", rec.Submitter.ID)
	if a.pipeline == nil {
		return
	}

	run := func() {
		res := a.pipeline.Submit(ctx, rec)
		if a.onSubmitted != nil {
			a.onSubmitted(res)
		}
	}
	if a.syncSubmit {
		run()
		return
	}

	ctx = context.WithoutCancel(ctx)
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		run()
	}()
}

// Wait blocks until every background submission has finished, or ctx ends.
func (a *Agent) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Form returns the questionnaire the agent collects.
func (a *Agent) Form() *domain.Form {
	return a.form
}

// Menu returns the main menu keyboard, for transports that show it up front.
func (a *Agent) Menu() []string {
	return a.engine.MenuKeyboard()
}

// Session returns the current session for key (idle if none).
func (a *Agent) Session(ctx context.Context, key string) (*domain.Session, error) {
	return a.sessions.Load(ctx, key)
}

// ActiveSessions lists the keys of sessions that are mid-dialogue.
func (a *Agent) ActiveSessions(ctx context.Context) ([]string, error) {
	return a.sessions.List(ctx)
}
