// Package workerpool bounds how many API calls run at once.
//
// A Pool limits concurrent goroutines; Submit never blocks and returns
// ErrPoolFull under backpressure, SubmitWait waits for a slot. A Group runs
// a fixed set of context-aware tasks on a Pool and returns the first error:
//
//	g, ctx := workerpool.WithContext(ctx, 4)
//	g.Go(func(ctx context.Context) error { vendor, err = svc.Vendor(ctx); return err })
//	g.Go(func(ctx context.Context) error { stats, err = svc.Stats(ctx); return err })
//	if err := g.Wait(); err != nil { ... }
package workerpool

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeMu sync.RWMutex
	closed  bool
}

// New creates a Pool with size workers; size < 1 is treated as 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until the task is queued.
func (p *Pool) SubmitWait(task func()) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks, runs what is queued and waits for the
// workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.closeMu.Lock()
		p.closed = true
		close(p.tasks)
		p.closeMu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		_ = safeRun(task)
	}
}

// safeRun executes task, converting a panic into an error so one bad task
// cannot kill its worker.
func safeRun(task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: task panicked: %v", r)
		}
	}()
	task()
	return nil
}
