package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/vendordesk/pkg/event"
)

func TestFireReachesListenersInOrder(t *testing.T) {
	bus := event.New()
	var got []string
	bus.Listen("session.set", func(p interface{}) { got = append(got, "a:"+p.(string)) })
	bus.Listen("session.set", func(p interface{}) { got = append(got, "b:"+p.(string)) })
	bus.Listen("other", func(interface{}) { got = append(got, "other") })

	bus.Fire("session.set", "7")
	assert.Equal(t, []string{"a:7", "b:7"}, got)
}

func TestUnsubscribe(t *testing.T) {
	bus := event.New()
	n := 0
	off := bus.Listen("x", func(interface{}) { n++ })
	bus.Fire("x", nil)
	off()
	off()
	bus.Fire("x", nil)
	assert.Equal(t, 1, n)
}

func TestFireAsync(t *testing.T) {
	bus := event.New()
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		bus.Listen("x", func(interface{}) { wg.Done() })
	}
	bus.FireAsync("x", nil)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async listeners did not run")
	}
}

func TestFlush(t *testing.T) {
	bus := event.New()
	called := false
	bus.Listen("x", func(interface{}) { called = true })
	bus.Flush()
	bus.Fire("x", nil)
	assert.False(t, called)
}
