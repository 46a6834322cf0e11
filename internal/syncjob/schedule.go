package syncjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

var ErrInvalidSchedule = errors.New("invalid cron expression")

// NextRun returns the first tick of expr strictly after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	if !gronx.IsValid(expr) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("next tick of %q: %w", expr, err)
	}
	return next, nil
}

// Schedule runs the job at every tick of expr until ctx is done. Failed
// runs are logged and retried at the next tick.
func (j *Job) Schedule(ctx context.Context, expr string) error {
	if !gronx.IsValid(expr) {
		return fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	for {
		next, err := NextRun(expr, time.Now())
		if err != nil {
			return err
		}
		j.Logger.Info("next pricing sync scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := j.Run(ctx); err != nil {
			j.Logger.Error("scheduled pricing sync failed", "error", err)
		}
	}
}
