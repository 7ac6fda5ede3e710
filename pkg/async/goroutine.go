package async

import (
	"context"
	"sync"
	"time"

	"github.com/platinummonkey/workboard/pkg/observability"
)

// SafeGo runs fn in a goroutine bounded by timeout. Panics are recovered and
// errors are logged; neither reaches the caller.
//
//	async.SafeGo(context.WithoutCancel(ctx), 30*time.Second, "delete old avatar", logger, func(ctx context.Context) error {
//		return objects.Delete(ctx, key)
//	})
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, logger *observability.Logger, fn func(context.Context) error) {
	safeGo(parentCtx, timeout, taskName, logger, fn, func() {})
}

func safeGo(parentCtx context.Context, timeout time.Duration, taskName string, logger *observability.Logger, fn func(context.Context) error, done func()) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	go func() {
		defer done()
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		if err := observability.Recover(logger, taskName, func() error { return fn(ctx) }); err != nil {
			logger.WithError(err).WithField("task", taskName).Warn("background task failed")
		}
	}()
}

// Group tracks background tasks started with Go so that shutdown can wait for
// them. The zero value is ready to use.
type Group struct {
	wg sync.WaitGroup
}

// Go is SafeGo with the task registered in g
func (g *Group) Go(parentCtx context.Context, timeout time.Duration, taskName string, logger *observability.Logger, fn func(context.Context) error) {
	g.wg.Add(1)
	safeGo(parentCtx, timeout, taskName, logger, fn, g.wg.Done)
}

// Wait blocks until every task has finished or ctx is done
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
