package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull        = errors.New("notification queue full")
	ErrDispatcherClosed = errors.New("notification dispatcher closed")
)

// Deferred is implemented by notifiers that deliver after Notify returns.
// done receives the delivery outcome, possibly from another goroutine.
type Deferred interface {
	NotifyThen(ctx context.Context, to Recipient, msg Message, done func(error)) error
}

// DispatcherConfig sizes the in-process delivery queue.
type DispatcherConfig struct {
	// QueueSize bounds pending messages (default: 256).
	QueueSize int

	// SendTimeout bounds one delivery, throttling included (default: 30s).
	SendTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{QueueSize: 256, SendTimeout: 30 * time.Second}
}

type job struct {
	ctx  context.Context
	to   Recipient
	msg  Message
	done func(error)
}

// Dispatcher hands messages to a single background goroutine so that
// callers never wait on a mail server or a rate limiter. When the queue is
// full new messages are rejected with ErrQueueFull.
type Dispatcher struct {
	next   Notifier
	config DispatcherConfig
	jobs   chan job

	mu       sync.RWMutex
	started  bool
	closed   bool
	finished chan struct{}
}

func NewDispatcher(next Notifier, config DispatcherConfig) *Dispatcher {
	def := DefaultDispatcherConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = def.SendTimeout
	}
	return &Dispatcher{
		next:     next,
		config:   config,
		jobs:     make(chan job, config.QueueSize),
		finished: make(chan struct{}),
	}
}

// Start launches the delivery goroutine. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.run()
}

func (d *Dispatcher) Notify(ctx context.Context, to Recipient, msg Message) error {
	return d.NotifyThen(ctx, to, msg, nil)
}

// NotifyThen queues msg. The returned error only reports whether it was
// queued; the delivery outcome goes to done.
func (d *Dispatcher) NotifyThen(ctx context.Context, to Recipient, msg Message, done func(error)) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), to: to, msg: msg, done: done}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for the queued ones to be
// delivered, or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-d.finished:
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Notification dispatcher closed with pending messages", "pending", len(d.jobs))
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.finished)
	for j := range d.jobs {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.config.SendTimeout)
	defer cancel()
	err := d.next.Notify(ctx, j.to, j.msg)
	if j.done != nil {
		j.done(err)
	}
}
