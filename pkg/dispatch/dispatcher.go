package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
)

// ErrClosed is returned when a message is offered to a closed Dispatcher.
var ErrClosed = errors.New("dispatcher closed")

// Handler processes a single message. It is never called concurrently for
// the same session key.
type Handler func(ctx context.Context, msg domain.Message) (domain.Reply, error)

// Callback receives the result of an enqueued message.
type Callback func(msg domain.Message, reply domain.Reply, err error)

type job struct {
	ctx  context.Context
	msg  domain.Message
	done Callback
}

// mailbox is the FIFO queue of one session key. It lives only while it has
// pending work; its worker removes it from the map once drained.
type mailbox struct {
	jobs []job
}

// Dispatcher fans inbound messages out to one worker per active session key.
// Messages of different keys run concurrently; messages of the same key run
// one at a time, in arrival order.
type Dispatcher struct {
	handler Handler
	logger  *slog.Logger
	slots   chan struct{} // nil means unbounded

	mu     sync.Mutex
	boxes  map[string]*mailbox
	closed bool
	wg     sync.WaitGroup
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMaxWorkers bounds how many session keys are processed at the same time.
// Zero or less means unbounded.
func WithMaxWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.slots = make(chan struct{}, n)
		} else {
			d.slots = nil
		}
	}
}

// New creates a Dispatcher around handler.
func New(handler Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handler: handler,
		logger:  logging.NewNop(),
		boxes:   make(map[string]*mailbox),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue queues msg behind any pending message of the same session key and
// returns immediately. done, if not nil, is called from the worker goroutine.
func (d *Dispatcher) Enqueue(ctx context.Context, msg domain.Message, done Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	box, ok := d.boxes[msg.SessionKey]
	if !ok {
		box = &mailbox{}
		d.boxes[msg.SessionKey] = box
		d.wg.Add(1)
		go d.work(msg.SessionKey, box)
	}
	box.jobs = append(box.jobs, job{ctx: ctx, msg: msg, done: done})
	return nil
}

// Dispatch queues msg and waits for its reply.
// If ctx ends first, Dispatch returns ctx.Err(); a message already being
// handled still completes.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) (domain.Reply, error) {
	type result struct {
		reply domain.Reply
		err   error
	}
	ch := make(chan result, 1)
	err := d.Enqueue(ctx, msg, func(_ domain.Message, reply domain.Reply, err error) {
		ch <- result{reply: reply, err: err}
	})
	if err != nil {
		return domain.Reply{}, err
	}

	select {
	case r := <-ch:
		return r.reply, r.err
	case <-ctx.Done():
		return domain.Reply{}, ctx.Err()
	}
}

// Active returns the number of session keys with pending work.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.boxes)
}

// Close stops accepting messages and waits for queued ones to drain, or for
// ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work(key string, box *mailbox) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(box.jobs) == 0 {
			delete(d.boxes, key)
			d.mu.Unlock()
			return
		}
		j := box.jobs[0]
		box.jobs[0] = job{}
		box.jobs = box.jobs[1:]
		d.mu.Unlock()

		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	reply, err := d.handle(j)
	if j.done != nil {
		j.done(j.msg, reply, err)
	}
}

func (d *Dispatcher) handle(j job) (reply domain.Reply, err error) {
	if d.slots != nil {
		select {
		case d.slots <- struct{}{}:
			defer func() { <-d.slots }()
		case <-j.ctx.Done():
			return domain.Reply{}, j.ctx.Err()
		}
	}
	if err := j.ctx.Err(); err != nil {
		d.logger.Debug("message dropped, context done", "session_key", j.msg.SessionKey, "err", err)
		return domain.Reply{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic", "session_key", j.msg.SessionKey, "panic", r)
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return d.handler(j.ctx, j.msg)
}
