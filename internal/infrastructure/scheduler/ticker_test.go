package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerSchedulerFiresJob(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 1)
	s := NewTickerScheduler(10 * time.Millisecond)

	require.NoError(t, s.Start(context.Background(), func(tick time.Time) {
		select {
		case fired <- tick:
		default:
		}
	}))
	defer s.Stop(context.Background())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}
}

func TestTickerSchedulerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(time.Hour)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerDoubleStart(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(time.Hour)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(time.Hour)
	require.NoError(t, s.Start(context.Background(), nil))
	// Nothing was started, so Stop has nothing to do.
	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerConcurrentStop(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(time.Millisecond)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Stop(context.Background()))
		}()
	}
	wg.Wait()

	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerDefaultInterval(t *testing.T) {
	t.Parallel()

	s := NewTickerScheduler(0)
	assert.Equal(t, 24*time.Hour, s.interval)
}
