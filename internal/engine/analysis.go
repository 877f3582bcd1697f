package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/benzhenwen/anotherchessengine/internal/board"
)

// Analysis is a search running in the background. Its latest completed
// depth can be read at any time with Snapshot.
type Analysis struct {
	cancel context.CancelFunc
	g      *errgroup.Group
	latest atomic.Pointer[Result]
	final  Result
}

// StartAnalysis searches a copy of pos to depth on its own goroutine.
// The caller's position is never touched.
func (e *Engine) StartAnalysis(ctx context.Context, pos *board.Position, depth int) *Analysis {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	a := &Analysis{cancel: cancel, g: g}
	work := pos.Copy()

	g.Go(func() error {
		res, err := e.run(ctx, work, depth, func(r Result) {
			a.latest.Store(&r)
			if e.OnDepth != nil {
				e.OnDepth(r)
			}
		})
		a.final = res
		if res.Depth > 0 {
			a.latest.Store(&res)
		}
		return err
	})
	return a
}

// Snapshot returns the deepest completed iteration so far.
func (a *Analysis) Snapshot() (Result, bool) {
	r := a.latest.Load()
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// Stop cancels the search. It does not wait for it.
func (a *Analysis) Stop() {
	a.cancel()
}

// Wait blocks until the search finishes and returns its final result.
func (a *Analysis) Wait() (Result, error) {
	err := a.g.Wait()
	a.cancel()
	return a.final, err
}
