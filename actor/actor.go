// Package actor implements the single-writer owner of a Store + GCRA
// kernel pair. All decisions are serialized through one goroutine, which
// is the linearization point the rest of the system relies on instead of
// per-key locking.
package actor

import (
	"context"
	"sync/atomic"

	"github.com/cellgate/cellgate/clock"
	"github.com/cellgate/cellgate/gcra"
	"github.com/cellgate/cellgate/store"
)

// Status is one of the three Actor lifecycle states.
type Status int32

const (
	StateRunning Status = iota
	StateDraining
	StateTerminated
)

func (s Status) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Request is the transport-agnostic core request. Transports build this
// from their wire formats; the Actor stamps now_ns itself — clients never
// supply a timestamp.
type Request struct {
	Key            string
	MaxBurst       int64
	CountPerPeriod int64
	PeriodSeconds  int64
	Quantity       int64
}

type envelope struct {
	req   Request
	reply chan replyMsg
}

type replyMsg struct {
	outcome gcra.Outcome
	err     error
}

// Option configures an Actor at construction time.
type Option func(*Actor)

// WithQueueCapacity sets the bounded command-queue capacity. Default 10000.
func WithQueueCapacity(n int) Option {
	return func(a *Actor) { a.queueCapacity = n }
}

// WithTopKeysCapacity enables the bounded top-denied-keys tracker with the
// given capacity. 0 (the default) disables it, which costs nothing: no
// allocation, no lock.
func WithTopKeysCapacity(n int) Option {
	return func(a *Actor) { a.topKeysCapacity = n }
}

// WithBlockingSubmit makes Throttle block on a full queue (subject to the
// caller's context) instead of failing immediately with ErrBackpressure.
func WithBlockingSubmit(blocking bool) Option {
	return func(a *Actor) { a.blocking = blocking }
}

// Actor owns exactly one Store and processes requests from a bounded,
// multi-producer/single-consumer channel in FIFO-per-producer order.
type Actor struct {
	store store.Store
	clock clock.Clock

	queueCapacity   int
	topKeysCapacity int
	blocking        bool

	requests chan envelope
	shutdown chan struct{}
	done     chan struct{}

	state   atomic.Int32
	metrics Metrics
	topKeys *topKeys
}

// New constructs an Actor around the given Store and Clock. The Actor does
// not start processing until Run is called in its own goroutine.
func New(st store.Store, clk clock.Clock, opts ...Option) *Actor {
	a := &Actor{
		store:         st,
		clock:         clk,
		queueCapacity: 10_000,
		shutdown:      make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.requests = make(chan envelope, a.queueCapacity)
	a.topKeys = newTopKeys(a.topKeysCapacity)
	return a
}

// Status reports the current lifecycle state.
func (a *Actor) Status() Status {
	return Status(a.state.Load())
}

// Metrics exposes the counters for read-only external consumption.
func (a *Actor) Metrics() *Metrics { return &a.metrics }

// TopDeniedKeys returns a snapshot of the top-denied-keys tracker, or nil
// if the capability is disabled.
func (a *Actor) TopDeniedKeys() map[string]int64 { return a.topKeys.snapshot() }

// Throttle submits one request and awaits its outcome. It never touches
// the Store directly: the only path to a decision is the Actor's own
// goroutine running Run.
func (a *Actor) Throttle(ctx context.Context, req Request) (gcra.Outcome, error) {
	if Status(a.state.Load()) != StateRunning {
		return gcra.Outcome{}, ErrUnavailable
	}

	if err := validateKey(req.Key); err != nil {
		return gcra.Outcome{}, err
	}

	reply := make(chan replyMsg, 1)
	env := envelope{req: req, reply: reply}

	if a.blocking {
		select {
		case a.requests <- env:
		case <-ctx.Done():
			return gcra.Outcome{}, ctx.Err()
		}
	} else {
		select {
		case a.requests <- env:
		default:
			return gcra.Outcome{}, ErrBackpressure
		}
	}

	select {
	case r := <-reply:
		return r.outcome, r.err
	case <-ctx.Done():
		return gcra.Outcome{}, ctx.Err()
	}
}

// Run is the Actor's single goroutine: the linearization point for every
// decision. Call it exactly once, typically as `go a.Run()`.
func (a *Actor) Run() {
	defer close(a.done)
	for {
		select {
		case env := <-a.requests:
			a.handle(env)
		case <-a.shutdown:
			a.state.Store(int32(StateDraining))
			a.drain()
			a.state.Store(int32(StateTerminated))
			return
		}
	}
}

// drain processes whatever is currently buffered without accepting new
// work; Throttle already refuses new submissions once state is no longer
// Running.
func (a *Actor) drain() {
	for {
		select {
		case env := <-a.requests:
			a.handle(env)
		default:
			return
		}
	}
}

// Shutdown signals Running -> Draining and blocks until the Actor has
// finished queued work and reached Terminated, or ctx is done.
func (a *Actor) Shutdown(ctx context.Context) error {
	close(a.shutdown)
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handle runs the seven-step decision sequence for one request and
// delivers the reply, discarding it silently if the producer already
// dropped its reply handle (canceled).
func (a *Actor) handle(env envelope) {
	nowNano := a.clock.NowNano()

	a.store.MaybeCleanup(nowNano)

	state := a.store.GetOrDefault(env.req.Key, nowNano)

	policy := gcra.Policy{
		MaxBurst:       env.req.MaxBurst,
		CountPerPeriod: env.req.CountPerPeriod,
		PeriodSeconds:  env.req.PeriodSeconds,
		Quantity:       env.req.Quantity,
	}

	newState, outcome, err := gcra.Decide(&state, policy, nowNano)
	if err != nil {
		a.deliver(env, replyMsg{err: err})
		return
	}

	if outcome.Allowed {
		a.store.Insert(env.req.Key, newState)
		a.metrics.recordAllowed()
	} else {
		a.metrics.recordDenied()
		a.topKeys.recordDenial(env.req.Key)
	}

	a.deliver(env, replyMsg{outcome: outcome})
}

func (a *Actor) deliver(env envelope, reply replyMsg) {
	select {
	case env.reply <- reply:
	default:
		// Producer dropped the reply handle (canceled); the decision has
		// already been committed, so there is nothing to roll back.
	}
}
