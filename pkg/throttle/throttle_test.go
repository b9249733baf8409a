package throttle

import (
	"context"
	"sync"
	"testing"
	"time"

	"stock-insight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerMinimumGap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gap := 50 * time.Millisecond
	s := New(gap, 16, logger.NewNop())
	s.Start(ctx)

	const tasks = 4
	start := time.Now()
	for i := 0; i < tasks; i++ {
		err := s.Do(ctx, "test", func(ctx context.Context) error { return nil })
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// Each completion is followed by the gap before the next task runs.
	assert.GreaterOrEqual(t, elapsed, time.Duration(tasks-1)*gap)
}

func TestSchedulerFIFO(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(time.Millisecond, 16, logger.NewNop())
	s.Start(ctx)

	var mu sync.Mutex
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		err := s.Do(ctx, "test", func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSchedulerDrainsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := New(time.Hour, 16, logger.NewNop())
	s.Start(ctx)

	// The first task runs, then the worker sits in its gap sleep. The
	// second stays queued until cancellation fails it.
	err := s.Do(ctx, "first", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- s.Do(context.Background(), "second", func(ctx context.Context) error { return nil })
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("queued task was not drained on cancel")
	}
}

func TestSchedulerCooldown(t *testing.T) {
	s := New(time.Millisecond, 16, logger.NewNop())

	now := time.Now()
	s.nowFn = func() time.Time { return now }

	assert.True(t, s.Available("fugle"))
	assert.Zero(t, s.CooldownRemaining("fugle"))

	s.MarkCooldown("fugle", time.Minute)
	assert.False(t, s.Available("fugle"))
	assert.Equal(t, time.Minute, s.CooldownRemaining("fugle"))

	// Other providers are unaffected.
	assert.True(t, s.Available("finmind"))

	now = now.Add(61 * time.Second)
	assert.True(t, s.Available("fugle"))
	assert.Zero(t, s.CooldownRemaining("fugle"))
}
