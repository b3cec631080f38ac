package workerpool

import (
	"context"
	"sync"
)

// Group runs tasks on a private Pool. The first task to fail, or to panic,
// cancels the group's context; Wait returns that error.
type Group struct {
	pool   *Pool
	ctx    context.Context
	cancel context.CancelCauseFunc

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// WithContext returns a Group running at most limit tasks at a time and the
// context the tasks receive.
func WithContext(ctx context.Context, limit int) (*Group, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Group{pool: New(limit), ctx: ctx, cancel: cancel}, ctx
}

// Go schedules fn. Tasks scheduled after the group failed or its context
// ended are skipped.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.wg.Add(1)
	err := g.pool.SubmitWait(func() {
		defer g.wg.Done()
		if g.ctx.Err() != nil {
			g.fail(context.Cause(g.ctx))
			return
		}
		var taskErr error
		if perr := safeRun(func() { taskErr = fn(g.ctx) }); perr != nil {
			taskErr = perr
		}
		if taskErr != nil {
			g.fail(taskErr)
		}
	})
	if err != nil {
		g.wg.Done()
		g.fail(err)
	}
}

// Wait blocks until every scheduled task has returned, releases the pool and
// returns the first error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.pool.Shutdown()
	g.cancel(nil)
	return g.err
}

func (g *Group) fail(err error) {
	g.errOnce.Do(func() {
		g.err = err
		g.cancel(err)
	})
}
