package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sink names used in logs, events and metrics.
const (
	SinkNotifier = "notifier"
	SinkLedger   = "ledger"
)

// DefaultTimeout bounds each sink call.
const DefaultTimeout = 10 * time.Second

// Pipeline delivers a confirmed record to the Notifier and the Ledger.
//
// Each sink gets exactly one attempt, bounded by its own timeout. A failure
// of one never prevents the other, and nothing is retried.
type Pipeline struct {
	notifier    ports.Notifier
	destination string
	ledger      ports.Ledger

	// Why a sink is permanently skipped; nil when it is available.
	notifierDown error
	ledgerDown   error

	format  Formatter
	timeout time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithTimeout sets the per-sink timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithFormatter overrides how records are rendered.
func WithFormatter(f Formatter) Option {
	return func(p *Pipeline) {
		p.format = f
	}
}

// WithForm pins the ledger columns to the form's field order.
func WithForm(form *domain.Form) Option {
	return func(p *Pipeline) {
		p.format.Columns = form.Names()
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLifecycleHooks registers the OnSink hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithTracer sets the OpenTelemetry tracer. Defaults to the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithClock overrides the time source used for events.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NotifierUnavailable marks the notifier as failed at startup.
func NotifierUnavailable(cause error) Option {
	return func(p *Pipeline) {
		p.notifierDown = unavailable(cause)
	}
}

// LedgerUnavailable marks the ledger as failed at startup.
func LedgerUnavailable(cause error) Option {
	return func(p *Pipeline) {
		p.ledgerDown = unavailable(cause)
	}
}

func unavailable(cause error) error {
	if cause == nil || errors.Is(cause, domain.ErrSinkUnavailable) {
		return domain.ErrSinkUnavailable
	}
	return fmt.Errorf("%w: %w", domain.ErrSinkUnavailable, cause)
}

// New creates a Pipeline. A nil notifier or ledger is treated as
// unavailable. Unavailable sinks are reported once, here.
func New(notifier ports.Notifier, destination string, ledger ports.Ledger, opts ...Option) *Pipeline {
	p := &Pipeline{
		notifier:    notifier,
		destination: destination,
		ledger:      ledger,
		format:      DefaultFormatter(),
		timeout:     DefaultTimeout,
		logger:      logging.NewNop(),
		tracer:      otel.Tracer("github.com/aretw0/intake/submission"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.notifier == nil && p.notifierDown == nil {
		p.notifierDown = domain.ErrSinkUnavailable
	}
	if p.ledger == nil && p.ledgerDown == nil {
		p.ledgerDown = domain.ErrSinkUnavailable
	}
	if p.notifierDown != nil {
		p.logger.Warn("notifier unavailable, submissions will skip it", "err", p.notifierDown)
	}
	if p.ledgerDown != nil {
		p.logger.Warn("ledger unavailable, submissions will skip it", "err", p.ledgerDown)
	}
	return p
}

// Available reports which sinks will be attempted.
func (p *Pipeline) Available() (notifier, ledger bool) {
	return p.notifierDown == nil, p.ledgerDown == nil
}

// Submit delivers rec to both sinks and waits for the two attempts.
// It never fails as a whole: per-sink outcomes are in the result.
// Cancelling ctx does not abort an in-flight submission.
func (p *Pipeline) Submit(ctx context.Context, rec domain.Record) domain.SubmissionResult {
	ctx = context.WithoutCancel(ctx)
	ctx, span := p.tracer.Start(ctx, "submission.submit",
		trace.WithAttributes(attribute.String("record.id", rec.ID)))
	defer span.End()

	result := domain.SubmissionResult{RecordID: rec.ID}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Notifier = p.attempt(ctx, rec, SinkNotifier, p.notifierDown, func(ctx context.Context) error {
			return p.notifier.Notify(ctx, p.destination, p.format.Notification(rec))
		})
	}()
	go func() {
		defer wg.Done()
		result.Ledger = p.attempt(ctx, rec, SinkLedger, p.ledgerDown, func(ctx context.Context) error {
			return p.ledger.AppendRow(ctx, p.format.Row(rec))
		})
	}()
	wg.Wait()

	span.SetAttributes(
		attribute.String("sink.notifier", string(result.Notifier)),
		attribute.String("sink.ledger", string(result.Ledger)),
	)
	p.logger.Info("submission processed",
		"record_id", rec.ID, "notifier", result.Notifier, "ledger", result.Ledger)
	return result
}

func (p *Pipeline) attempt(ctx context.Context, rec domain.Record, sink string, down error, call func(context.Context) error) domain.SinkStatus {
	if down != nil {
		p.emit(ctx, rec, sink, domain.SinkSkipped, 0, down)
		return domain.SinkSkipped
	}

	ctx, span := p.tracer.Start(ctx, "submission."+sink)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := safeCall(ctx, call)
	elapsed := time.Since(start)

	if err != nil {
		failure := &domain.SinkFailure{Sink: sink, Cause: err}
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
		p.logger.Error("sink delivery failed", "record_id", rec.ID, "sink", sink, "duration", elapsed, "err", err)
		p.emit(ctx, rec, sink, domain.SinkFailed, elapsed, failure)
		return domain.SinkFailed
	}

	p.logger.Debug("sink delivered", "record_id", rec.ID, "sink", sink, "duration", elapsed)
	p.emit(ctx, rec, sink, domain.SinkDelivered, elapsed, nil)
	return domain.SinkDelivered
}

// safeCall runs call, turning a panic into an error and returning early
// when the timeout fires before a call that ignores its context.
func safeCall(ctx context.Context, call func(context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- call(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) emit(ctx context.Context, rec domain.Record, sink string, status domain.SinkStatus, d time.Duration, err error) {
	if p.hooks.OnSink == nil {
		return
	}
	p.hooks.OnSink(ctx, &domain.SinkEvent{
		EventBase: domain.EventBase{Timestamp: p.now(), Type: domain.EventSink},
		RecordID:  rec.ID,
		Sink:      sink,
		Status:    status,
		Duration:  d,
		Err:       err,
	})
}
