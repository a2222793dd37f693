package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRunsPeriodicJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterJob("tick", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	// 启动后立即执行一次，之后按周期执行
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)

	n := runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, runs.Load())
}

func TestSchedulerOnceJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterOnceJob("warmup", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestSchedulerRecoversPanic(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterJob("panicky", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		panic("bad job")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	s.Stop(stopCtx)
}

func TestSchedulerStopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	canceled := make(chan struct{})
	s.RegisterOnceJob("long", func(ctx context.Context) error {
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	})
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("job was not canceled")
	}
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	assert.Panics(t, func() {
		s.RegisterJob("bad", 0, func(context.Context) error { return nil })
	})
}

func TestSchedulerJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	noop := func(context.Context) error { return nil }
	s.RegisterJob("watchlist_refresh", time.Minute, noop)
	s.RegisterOnceJob("cache_load", noop)

	assert.Equal(t, []string{"cache_load", "watchlist_refresh"}, s.Jobs())
}
