// Package jobs runs fire-and-forget background tasks. A submitted task
// outlives the request that triggered it; the submitter gets no completion
// signal back, failures surface through logs and whatever compensation the
// task itself performs.
package jobs

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/printflow/backoffice/internal/logger"
)

// Runner executes background tasks, each with its own error boundary.
// There is no retry and no cancellation: a started task runs until it
// returns. Wait drains in-flight tasks (shutdown, tests).
type Runner struct {
	wg  sync.WaitGroup
	log zerolog.Logger
}

func NewRunner() *Runner {
	return &Runner{log: logger.WithComponent("jobs")}
}

// Submit schedules fn on its own goroutine and returns immediately.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().Str("job", name).Interface("panic", rec).Msg("job panicked")
			}
		}()
		if err := fn(context.Background()); err != nil {
			r.log.Error().Err(err).Str("job", name).Msg("job failed")
			return
		}
		r.log.Info().Str("job", name).Msg("job finished")
	}()
}

// Wait blocks until every submitted task has returned.
func (r *Runner) Wait() { r.wg.Wait() }
