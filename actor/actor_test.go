package actor

import (
	"context"
	"testing"
	"time"

	"github.com/cellgate/cellgate/clock"
	"github.com/cellgate/cellgate/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActor(t *testing.T, clk clock.Clock, opts ...Option) *Actor {
	t.Helper()
	st := store.NewPeriodic(16, 60_000_000_000)
	a := New(st, clk, opts...)
	go a.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})
	return a
}

func TestActor_ThrottleAllowsThenDenies(t *testing.T) {
	clk := clock.NewManual(0)
	a := newTestActor(t, clk)

	req := Request{Key: "k", MaxBurst: 0, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1}

	outcome, err := a.Throttle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, outcome.Allowed)

	outcome, err = a.Throttle(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, outcome.Allowed)
}

func TestActor_KernelErrorPropagates(t *testing.T) {
	clk := clock.NewManual(0)
	a := newTestActor(t, clk)

	req := Request{Key: "k", MaxBurst: -1, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1}
	_, err := a.Throttle(context.Background(), req)
	assert.Error(t, err)
}

func TestActor_BackpressureWhenQueueFull(t *testing.T) {
	clk := clock.NewManual(0)
	st := store.NewPeriodic(16, 60_000_000_000)
	a := New(st, clk, WithQueueCapacity(0))
	// Run is never started: every submission fills the zero-capacity
	// channel and fails immediately.
	_, err := a.Throttle(context.Background(), Request{Key: "k", MaxBurst: 1, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrBackpressure)
}

func TestActor_UnavailableAfterShutdown(t *testing.T) {
	clk := clock.NewManual(0)
	st := store.NewPeriodic(16, 60_000_000_000)
	a := New(st, clk)
	go a.Run()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))

	assert.Equal(t, StateTerminated, a.Status())

	_, err := a.Throttle(context.Background(), Request{Key: "k", MaxBurst: 1, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestActor_MetricsCountAllowedAndDenied(t *testing.T) {
	clk := clock.NewManual(0)
	a := newTestActor(t, clk)

	req := Request{Key: "k", MaxBurst: 0, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1}
	_, _ = a.Throttle(context.Background(), req)
	_, _ = a.Throttle(context.Background(), req)

	snap := a.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.Total)
	assert.Equal(t, int64(1), snap.Allowed)
	assert.Equal(t, int64(1), snap.Denied)
}

func TestActor_TopDeniedKeysDisabledByDefault(t *testing.T) {
	clk := clock.NewManual(0)
	a := newTestActor(t, clk)

	req := Request{Key: "k", MaxBurst: 0, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1}
	_, _ = a.Throttle(context.Background(), req)
	_, _ = a.Throttle(context.Background(), req)

	assert.Nil(t, a.TopDeniedKeys())
}

func TestActor_TopDeniedKeysTracksDenials(t *testing.T) {
	clk := clock.NewManual(0)
	a := newTestActor(t, clk, WithTopKeysCapacity(3))

	deny := func(key string, times int) {
		req := Request{Key: key, MaxBurst: 0, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1}
		for i := 0; i < times; i++ {
			_, _ = a.Throttle(context.Background(), req)
		}
	}

	deny("a", 6) // first request allowed, remaining 5 denied
	deny("b", 4) // first allowed, 3 denied
	deny("c", 3) // first allowed, 2 denied

	snap := a.TopDeniedKeys()
	assert.Equal(t, int64(5), snap["a"])
	assert.Equal(t, int64(3), snap["b"])
	assert.Equal(t, int64(2), snap["c"])

	// New key evicts the current lowest (c, at 2).
	deny("e", 2) // first allowed, 1 denied
	snap = a.TopDeniedKeys()
	assert.NotContains(t, snap, "c")
	assert.Contains(t, snap, "e")
}

func TestActor_OrderingFIFOPerProducer(t *testing.T) {
	clk := clock.NewManual(0)
	a := newTestActor(t, clk)

	req := Request{Key: "k", MaxBurst: 100, CountPerPeriod: 1, PeriodSeconds: 1, Quantity: 1}
	var remainings []int64
	for i := 0; i < 5; i++ {
		outcome, err := a.Throttle(context.Background(), req)
		require.NoError(t, err)
		remainings = append(remainings, outcome.Remaining)
	}
	// Strictly decreasing: a single producer's requests are processed in
	// submission order.
	for i := 1; i < len(remainings); i++ {
		assert.Less(t, remainings[i], remainings[i-1])
	}
}
