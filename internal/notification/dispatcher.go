package notification

import (
	"context"
	"sync"
	"time"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
)

// Options tunes a Dispatcher.
type Options struct {
	// OnlyAbnormal forwards only submissions with at least one failed item.
	OnlyAbnormal bool
	QueueSize    int
	SendTimeout  time.Duration
	Breaker      CircuitBreakerConfig
}

// DefaultOptions returns the options used when the config leaves them unset.
func DefaultOptions() Options {
	return Options{
		QueueSize:   64,
		SendTimeout: 15 * time.Second,
		Breaker:     DefaultCircuitBreakerConfig(),
	}
}

type sink struct {
	provider Provider
	breaker  *CircuitBreaker
}

// Dispatcher implements happycall.Notifier. Events are queued and delivered
// to every provider by a single worker goroutine.
type Dispatcher struct {
	opts     Options
	sinks    []sink
	queue    chan *Message
	recorder ResultRecorder
	log      logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ happycall.Notifier = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher over providers. A nil recorder or logger
// falls back to a no-op recorder and the module logger.
func NewDispatcher(opts Options, recorder ResultRecorder, log logger.Logger, providers ...Provider) *Dispatcher {
	def := DefaultOptions()
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = def.SendTimeout
	}
	if opts.Breaker.MaxFailures <= 0 {
		opts.Breaker = def.Breaker
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if log == nil {
		log = GetLogger()
	}

	d := &Dispatcher{
		opts:     opts,
		queue:    make(chan *Message, opts.QueueSize),
		recorder: recorder,
		log:      log,
		done:     make(chan struct{}),
	}
	for _, p := range providers {
		d.sinks = append(d.sinks, sink{
			provider: p,
			breaker:  NewCircuitBreaker(opts.Breaker, p.Name(), log),
		})
	}

	go d.run()
	return d
}

// Sinks returns the names of the configured providers.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.provider.Name()
	}
	return names
}

// NotifySubmission queues ev for delivery without blocking. Events are dropped
// when the queue is full or the dispatcher is closed.
func (d *Dispatcher) NotifySubmission(_ context.Context, ev happycall.SubmissionEvent) {
	if len(d.sinks) == 0 {
		return
	}
	if d.opts.OnlyAbnormal && !ev.Abnormal() {
		d.log.Debug("skipping normal submission", logger.Uint("submission_id", ev.SubmissionID))
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- NewMessage(ev):
	default:
		d.log.Warn("notification queue full, dropping event",
			logger.Uint("submission_id", ev.SubmissionID),
			logger.Int("queue_size", d.opts.QueueSize))
		for _, s := range d.sinks {
			d.recorder.RecordNotification(s.provider.Name(), ResultDropped)
		}
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg *Message) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.SendTimeout)
		err := s.breaker.Call(ctx, func(ctx context.Context) error {
			return s.provider.Send(ctx, msg)
		})
		cancel()

		name := s.provider.Name()
		switch {
		case err == nil:
			d.recorder.RecordNotification(name, ResultSuccess)
			d.log.Debug("notification sent",
				logger.String("sink", name),
				logger.Uint("submission_id", msg.Event.SubmissionID))
		case errors.Is(err, ErrCircuitOpen):
			d.recorder.RecordNotification(name, ResultCircuitOpen)
		default:
			d.recorder.RecordNotification(name, ResultFailure)
			d.log.Warn("notification failed",
				logger.String("sink", name),
				logger.Uint("submission_id", msg.Event.SubmissionID),
				logger.Error(err))
		}
	}
}

// Close stops accepting events, drains the queue and releases provider
// resources. It returns ctx.Err() if draining outlives ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, s := range d.sinks {
		if c, ok := s.provider.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				d.log.Warn("closing sink", logger.String("sink", s.provider.Name()), logger.Error(err))
			}
		}
	}
	return nil
}
