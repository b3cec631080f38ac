package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsImmediatelyAndRepeats(t *testing.T) {
	s := New(WithTick(5 * time.Millisecond))
	var runs atomic.Int32
	s.Every(10 * time.Millisecond).Name("poll").Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestWithoutOverlappingSkipsBusyEntry(t *testing.T) {
	s := New(WithTick(2 * time.Millisecond))
	var runs atomic.Int32
	release := make(chan struct{})
	s.Every(time.Millisecond).WithoutOverlapping().Run(func(ctx context.Context) {
		runs.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	close(release)
	cancel()
	<-done
}

func TestPanicIsRecoveredAndAfterHookRuns(t *testing.T) {
	s := New(WithTick(2 * time.Millisecond))
	var after atomic.Int32
	s.Every(time.Hour).After(func() { after.Add(1) }).Run(func(context.Context) { panic("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	require.Eventually(t, func() bool { return after.Load() == 1 }, time.Second, 2*time.Millisecond)
	cancel()
	<-done
}

func TestList(t *testing.T) {
	s := New()
	s.Every(15 * time.Second).Name("orders").Run(func(context.Context) {})
	s.Every(time.Minute).Run(func(context.Context) {})
	assert.Equal(t, []string{"orders  [15s]", "task-2  [1m0s]"}, s.List())
}
