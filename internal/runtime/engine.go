package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/google/uuid"
)

// Effect is a side effect the caller must perform after a step.
// The engine itself never performs I/O.
type Effect string

const (
	EffectNone    Effect = ""
	EffectCatalog Effect = "catalog" // Attach the catalog document to the reply
	EffectSubmit  Effect = "submit"  // Hand Outcome.Record to the submission pipeline
)

// Outcome is the result of processing one inbound message.
type Outcome struct {
	// Session is the next session. An idle session means "clear".
	Session *domain.Session
	Reply   domain.Reply
	Effect  Effect
	// Record is set only with EffectSubmit.
	Record  *domain.Record
	Command Command
	// Verdict is set when the input was validated as an answer.
	Verdict *Verdict
}

// step is the context handed to a transition handler.
type step struct {
	ctx     context.Context
	session *domain.Session // private copy, safe to mutate
	msg     domain.Message
	cmd     Command
}

type handler func(e *Engine, s step) Outcome

// Engine is the dialogue state machine.
// It is stateless: every call receives the session and returns the next one.
type Engine struct {
	form     *domain.Form
	commands Commands
	aliases  lookup
	texts    Texts

	// transitions is keyed by (phase, command); CmdNone is the fallback row entry.
	transitions map[domain.Phase]map[Command]handler

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithCommands overrides the reserved command aliases.
func WithCommands(c Commands) EngineOption {
	return func(e *Engine) {
		e.commands = c.Merge(DefaultCommands())
	}
}

// WithTexts overrides user-facing texts.
func WithTexts(t Texts) EngineOption {
	return func(e *Engine) {
		e.texts = t.Merge(DefaultTexts())
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides how record IDs are generated.
func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) {
		e.newID = gen
	}
}

// NewEngine creates an engine for the given form.
// It fails if a command alias is ambiguous or collides with a choice label.
func NewEngine(form *domain.Form, opts ...EngineOption) (*Engine, error) {
	if form == nil || form.Len() == 0 {
		return nil, fmt.Errorf("%w: engine needs at least one field", domain.ErrInvalidForm)
	}

	e := &Engine{
		form:     form,
		commands: DefaultCommands(),
		texts:    DefaultTexts(),
		logger:   logging.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	aliases, err := e.commands.compile()
	if err != nil {
		return nil, fmt.Errorf("invalid commands: %w", err)
	}
	for _, field := range form.Fields {
		for _, choice := range field.Choices {
			if cmd := aliases.parse(choice); cmd == CmdHome || cmd == CmdBack || cmd == CmdKeep || cmd == CmdWelcome {
				return nil, fmt.Errorf("%w: choice %q of field %q shadows the %q command",
					domain.ErrInvalidForm, choice, field.Name, cmd)
			}
		}
	}
	e.aliases = aliases
	e.transitions = buildTransitions()
	return e, nil
}

// buildTransitions is the transition table. Rows are phases, columns are
// reserved commands; CmdNone is the row's fallback for plain text.
func buildTransitions() map[domain.Phase]map[Command]handler {
	global := map[Command]handler{
		CmdWelcome: (*Engine).welcome,
		CmdHome:    (*Engine).home,
	}
	row := func(specific map[Command]handler) map[Command]handler {
		out := make(map[Command]handler, len(global)+len(specific))
		for k, v := range global {
			out[k] = v
		}
		for k, v := range specific {
			out[k] = v
		}
		return out
	}

	return map[domain.Phase]map[Command]handler{
		domain.PhaseIdle: row(map[Command]handler{
			CmdCatalog:   (*Engine).catalog,
			CmdStartForm: (*Engine).begin,
			CmdBack:      (*Engine).home,
			CmdNone:      (*Engine).unrecognized,
		}),
		domain.PhaseCollecting: row(map[Command]handler{
			CmdBack: (*Engine).back,
			CmdKeep: (*Engine).keep,
			CmdNone: (*Engine).answer,
		}),
		domain.PhaseConfirming: row(map[Command]handler{
			CmdBack:    (*Engine).back,
			CmdConfirm: (*Engine).confirm,
			CmdEdit:    (*Engine).edit,
			CmdCancel:  (*Engine).cancel,
			CmdNone:    (*Engine).reconfirm,
		}),
	}
}

// Form returns the form the engine collects.
func (e *Engine) Form() *domain.Form {
	return e.form
}

// Commands returns the reserved command aliases in effect.
func (e *Engine) Commands() Commands {
	return e.commands
}

// Parse maps raw input to a reserved command (CmdNone for plain text).
func (e *Engine) Parse(text string) Command {
	return e.aliases.parse(text)
}

// Step processes one inbound message against the current session.
// The input session is never mutated.
func (e *Engine) Step(ctx context.Context, current *domain.Session, msg domain.Message) Outcome {
	if current == nil {
		current = domain.NewSession(msg.SessionKey, e.now())
	}
	session := current.Snapshot()
	if session.Answers == nil {
		session.Answers = make(domain.Answers)
	}
	phase := session.Phase
	if session.IsIdle() {
		phase = domain.PhaseIdle
	}
	if phase == domain.PhaseCollecting {
		if _, ok := e.form.At(session.Step); !ok {
			// A step outside the form (e.g. the form shrank): restart collection.
			e.logger.Warn("session step out of range, restarting form",
				"session_key", session.Key, "step", session.Step)
			session.Step = 0
		}
	}

	cmd := e.aliases.parse(msg.Text)
	row, known := e.transitions[phase]
	if !known {
		e.logger.Warn("unknown session phase, treating as idle", "session_key", session.Key, "phase", string(phase))
		row = e.transitions[domain.PhaseIdle]
	}
	h, ok := row[cmd]
	if !ok {
		h = row[CmdNone]
	}

	s := step{ctx: ctx, session: session, msg: msg, cmd: cmd}
	out := h(e, s)
	out.Command = cmd

	from := current.State(e.form)
	to := out.Session.State(e.form)
	if from != to {
		e.logger.Debug("transition", "session_key", msg.SessionKey, "from", from, "to", to, "command", string(cmd))
		e.emitTransition(ctx, msg.SessionKey, from, to, cmd)
	}
	return out
}

func (e *Engine) emitTransition(ctx context.Context, key, from, to string, cmd Command) {
	if e.hooks.OnTransition == nil {
		return
	}
	e.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventTransition, SessionKey: key},
		From:      from,
		To:        to,
		Command:   string(cmd),
	})
}

func (e *Engine) emitRejection(ctx context.Context, key, field string, reason Reason) {
	if e.hooks.OnRejection == nil {
		return
	}
	e.hooks.OnRejection(ctx, &domain.RejectionEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventRejection, SessionKey: key},
		Field:     field,
		Reason:    string(reason),
	})
}

// idle returns a cleared session for the same key.
func (e *Engine) idle(s step) *domain.Session {
	return domain.NewSession(s.session.Key, e.now())
}

func (e *Engine) welcome(s step) Outcome {
	return Outcome{Session: e.idle(s), Reply: e.menu(e.texts.Welcome)}
}

func (e *Engine) unrecognized(s step) Outcome {
	// Idle input must not create or touch a session.
	return Outcome{Session: s.session, Reply: e.menu(e.texts.Unrecognized)}
}

func (e *Engine) catalog(s step) Outcome {
	return Outcome{
		Session: s.session,
		Reply:   e.menu(e.texts.CatalogCaption),
		Effect:  EffectCatalog,
	}
}

func (e *Engine) begin(s step) Outcome {
	next := domain.NewSession(s.session.Key, e.now())
	next.Phase = domain.PhaseCollecting
	next.Step = 0
	return Outcome{Session: next, Reply: e.renderPrompt(next, 0, "")}
}

// answer validates the input for the current field and advances on success.
// Once every field has an answer (e.g. after edit) it returns to the summary.
func (e *Engine) answer(s step) Outcome {
	field, _ := e.form.At(s.session.Step)
	verdict := Validate(field, s.msg.Text)

	if !verdict.Accepted {
		e.emitRejection(s.ctx, s.session.Key, field.Name, verdict.Reason)
		return Outcome{
			Session: s.session,
			Reply:   e.renderPrompt(s.session, s.session.Step, e.texts.rejection(verdict.Reason)),
			Verdict: &verdict,
		}
	}

	next := s.session
	next.Answers[field.Name] = verdict.Value

	if e.firstMissing(next) < 0 {
		out := e.summarize(next)
		out.Verdict = &verdict
		return out
	}
	out := e.advance(next)
	out.Verdict = &verdict
	return out
}

// advance moves to the next field, or to the summary after the last one.
func (e *Engine) advance(next *domain.Session) Outcome {
	if next.Step+1 < e.form.Len() {
		next.Step++
		return Outcome{Session: next, Reply: e.renderPrompt(next, next.Step, "")}
	}
	return e.summarize(next)
}

func (e *Engine) summarize(next *domain.Session) Outcome {
	next.Phase = domain.PhaseConfirming
	next.Step = 0
	return Outcome{Session: next, Reply: e.renderSummary(next)}
}

func (e *Engine) reconfirm(s step) Outcome {
	return Outcome{Session: s.session, Reply: e.renderSummary(s.session)}
}

// confirm commits the form: the record is produced exactly once and the
// session is cleared, so a repeated "confirm" lands in the idle row.
func (e *Engine) confirm(s step) Outcome {
	if missing := e.firstMissing(s.session); missing >= 0 {
		next := s.session
		next.Phase = domain.PhaseCollecting
		next.Step = missing
		return Outcome{Session: next, Reply: e.renderPrompt(next, missing, "")}
	}

	record := &domain.Record{
		ID: e.newID(),
		Submitter: domain.Submitter{
			DisplayName: s.msg.Sender.DisplayName,
			Handle:      s.msg.Sender.Handle,
			ID:          s.msg.Sender.ID,
		},
		Answers:     e.form.Ordered(s.session.Answers),
		SubmittedAt: e.now(),
	}
	return Outcome{
		Session: e.idle(s),
		Reply:   e.menu(e.texts.Thanks),
		Effect:  EffectSubmit,
		Record:  record,
	}
}

func (e *Engine) cancel(s step) Outcome {
	return Outcome{Session: e.idle(s), Reply: e.menu(e.texts.Cancelled)}
}

func (e *Engine) firstMissing(session *domain.Session) int {
	for i, field := range e.form.Fields {
		if _, ok := session.Answers[field.Name]; !ok {
			return i
		}
	}
	return -1
}
