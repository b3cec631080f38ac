package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/pkg/cache"
)

func TestKeyAndPrefix(t *testing.T) {
	assert.Equal(t, "orders:3:1:10::abebe", cache.Key("orders", "3", 1, 10, "", "abebe"))
	assert.Equal(t, "orders:3:", cache.Prefix("orders", 3))
}

func TestRememberHitsAfterFirstCall(t *testing.T) {
	c := cache.New(time.Minute)
	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		return "page-1", nil
	}

	for i := 0; i < 3; i++ {
		v, err := cache.Remember(context.Background(), c, "k", fetch)
		require.NoError(t, err)
		assert.Equal(t, "page-1", v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRememberDedupesConcurrentCallers(t *testing.T) {
	c := cache.New(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.Remember(context.Background(), c, "same", fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c := cache.New(time.Minute)
	boom := errors.New("boom")
	n := 0
	fetch := func(context.Context) (string, error) {
		n++
		if n == 1 {
			return "", boom
		}
		return "ok", nil
	}

	_, err := cache.Remember(context.Background(), c, "k", fetch)
	assert.ErrorIs(t, err, boom)

	v, err := cache.Remember(context.Background(), c, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCancelledCallerLeavesResultForOthers(t *testing.T) {
	c := cache.New(time.Minute)
	release := make(chan struct{})
	stored := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-release
		cancel()
	}()

	fetch := func(fctx context.Context) (string, error) {
		close(release)
		time.Sleep(30 * time.Millisecond)
		assert.NoError(t, fctx.Err(), "shared fetch must not see the caller's cancellation")
		defer close(stored)
		return "late", nil
	}

	_, err := cache.Remember(ctx, c, "k", fetch)
	assert.ErrorIs(t, err, context.Canceled)

	<-stored
	require.Eventually(t, func() bool {
		_, ok := cache.Get[string](c, "k")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidatePrefix(t *testing.T) {
	c := cache.New(0)
	c.Put("orders:3:1", "a")
	c.Put("orders:3:2", "b")
	c.Put("orders:31:1", "c")
	c.Put("order:42", "d")

	assert.Equal(t, 2, c.Invalidate(cache.Prefix("orders", 3)))
	_, ok := cache.Get[string](c, "orders:31:1")
	assert.True(t, ok)
	_, ok = cache.Get[string](c, "orders:3:1")
	assert.False(t, ok)

	c.Forget("order:42")
	assert.Equal(t, 1, c.Len())
	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestInvalidationDuringFetchIsNotStored(t *testing.T) {
	c := cache.New(0)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, _ := cache.Remember(context.Background(), c, "orders:3:1", func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()

	<-started
	c.Invalidate("orders:3:")
	close(release)
	assert.Equal(t, "stale", <-done)

	_, ok := cache.Get[string](c, "orders:3:1")
	assert.False(t, ok, "pre-invalidation result must not be cached")
}

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.New(time.Minute, cache.WithClock(func() time.Time { return now }))
	c.Put("k", 1)

	_, ok := cache.Get[int](c, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = cache.Get[int](c, "k")
	assert.False(t, ok)
}

func TestGetWrongTypeIsMiss(t *testing.T) {
	c := cache.New(0)
	c.Put("k", "string")
	_, ok := cache.Get[int](c, "k")
	assert.False(t, ok)
}
