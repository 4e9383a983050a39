// Package saga runs a sequence of steps with compensating undo actions,
// standing in for a real transaction where storage and database writes
// cannot be atomic with respect to each other.
package saga

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one unit of work. Undo may be nil for steps that are irreversible
// or need no compensation.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Run executes steps in order. When a step fails, the Undo actions of all
// previously completed steps run in reverse order. Undo failures are logged
// and swallowed so the original error is never masked; the step error is
// returned wrapped with the failing step's name (errors.Is reaches it).
func Run(ctx context.Context, logger *zap.SugaredLogger, steps []Step) error {
	done := make([]Step, 0, len(steps))
	for _, step := range steps {
		if err := step.Do(ctx); err != nil {
			compensate(ctx, logger, done)
			return fmt.Errorf("%s: %w", step.Name, err)
		}
		done = append(done, step)
	}
	return nil
}

func compensate(ctx context.Context, logger *zap.SugaredLogger, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil && logger != nil {
			logger.Warnf("saga undo failed step=%s err=%v", step.Name, err)
		}
	}
}
