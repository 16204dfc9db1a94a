// Package clock drives periodic work: the one-second session clock and the
// draft, session and quick-save autosavers.
package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TickFunc is invoked once per interval. The context is cancelled when the
// ticker stops.
type TickFunc func(ctx context.Context)

// Ticker calls a TickFunc every interval until stopped.
//
// Invariant: at most one TickFunc invocation is in flight at a time.
type Ticker struct {
	name   string
	fn     TickFunc
	logger *zap.Logger

	interval atomic.Int64 // time.Duration; <= 0 pauses the ticker
	ticks    atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
	reset     chan struct{}
	quit      chan struct{}
	done      chan struct{}
}

// NewTicker creates a stopped Ticker.
//
// Precondition: fn and logger must be non-nil. An interval <= 0 creates a
// paused ticker that fires only after SetInterval supplies a positive value.
func NewTicker(name string, interval time.Duration, fn TickFunc, logger *zap.Logger) *Ticker {
	t := &Ticker{
		name:   name,
		fn:     fn,
		logger: logger,
		reset:  make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.interval.Store(int64(interval))
	return t
}

// Name returns the ticker's name.
func (t *Ticker) Name() string { return t.name }

// Interval returns the current interval.
func (t *Ticker) Interval() time.Duration { return time.Duration(t.interval.Load()) }

// Ticks returns the number of completed TickFunc invocations.
func (t *Ticker) Ticks() int64 { return t.ticks.Load() }

// SetInterval changes the interval. The next tick is scheduled a full new
// interval from the call. d <= 0 pauses the ticker.
func (t *Ticker) SetInterval(d time.Duration) {
	if time.Duration(t.interval.Swap(int64(d))) == d {
		return
	}
	select {
	case t.reset <- struct{}{}:
	default:
	}
}

// Start launches the ticker goroutine and returns a stop function.
// Calling Start more than once has no further effect; calling stop is idempotent.
//
// Postcondition: fn runs once per interval until stop is called.
func (t *Ticker) Start() (stop func()) {
	t.startOnce.Do(func() { go t.run() })
	return t.Stop
}

// Stop halts the ticker and waits for an in-flight tick to finish. It is
// idempotent and safe to call on a ticker that was never started.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.quit)
		t.cancel()
	})
	started := true
	t.startOnce.Do(func() { started = false })
	if !started {
		close(t.done)
		return
	}
	<-t.done
}

// Done returns a channel closed once the ticker has fully stopped.
func (t *Ticker) Done() <-chan struct{} { return t.done }

func (t *Ticker) run() {
	defer close(t.done)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	arm := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d := t.Interval(); d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}
	arm()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-tick:
			t.fire()
		case <-t.reset:
			arm()
			t.logger.Debug("ticker interval changed",
				zap.String("ticker", t.name),
				zap.Duration("interval", t.Interval()),
			)
		case <-t.quit:
			return
		}
	}
}

func (t *Ticker) fire() {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tick panicked",
				zap.String("ticker", t.name),
				zap.Any("panic", r),
			)
		}
		t.ticks.Add(1)
	}()
	t.fn(t.ctx)
}
