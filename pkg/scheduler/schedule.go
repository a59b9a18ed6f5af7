package scheduler

import (
	"errors"
	"time"

	"github.com/adhocore/gronx"
)

type (
	// Schedule computes the wake time that follows a given instant. It is
	// consulted at registration for the first wake and after each fire for
	// the next one, always relative to the actual fire time, so recurring
	// timers drift under load instead of bursting to catch up. Returning
	// false retires the timer
	Schedule interface {
		Next(after time.Time) (time.Time, bool)
	}

	periodicSchedule time.Duration

	cronSchedule string
)

var (
	// ErrNonPositivePeriod is raised for a zero or negative period, which
	// would otherwise spin the dispatcher at maximum rate
	ErrNonPositivePeriod = errors.New("period must be positive")

	// ErrInvalidCronExpr is raised for an unparseable cron expression
	ErrInvalidCronExpr = errors.New("invalid cron expression")
)

// Every returns a fixed-interval schedule. The period must be positive;
// AddTimer and AddSchedule reject entries whose schedule cannot produce a
// future wake
func Every(period time.Duration) Schedule {
	return periodicSchedule(period)
}

// Cron returns a schedule that fires at each occurrence of the provided
// cron expression, or ErrInvalidCronExpr if it cannot be parsed
func Cron(expr string) (Schedule, error) {
	if _, err := gronx.NextTick(expr, false); err != nil {
		return nil, ErrInvalidCronExpr
	}
	return cronSchedule(expr), nil
}

func (p periodicSchedule) Next(after time.Time) (time.Time, bool) {
	if p <= 0 {
		return time.Time{}, false
	}
	return after.Add(time.Duration(p)), true
}

func (c cronSchedule) Next(after time.Time) (time.Time, bool) {
	next, err := gronx.NextTickAfter(string(c), after, false)
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}
