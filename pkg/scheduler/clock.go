package scheduler

import "time"

type (
	// Clock provides the current time for wake computation and draining
	Clock func() time.Time

	// Timer represents a resettable dispatcher timer
	Timer interface {
		Channel() <-chan time.Time
		Reset(delay time.Duration) bool
		Stop() bool
	}

	// TimerConstructor builds a dispatcher timer with the given delay
	TimerConstructor func(delay time.Duration) Timer

	systemTimer struct {
		*time.Timer
	}
)

// SystemClock reads the system wall clock
func SystemClock() time.Time {
	return time.Now()
}

// NewTimer builds the default system-backed dispatcher timer
func NewTimer(delay time.Duration) Timer {
	return &systemTimer{
		Timer: time.NewTimer(delay),
	}
}

func (t *systemTimer) Channel() <-chan time.Time {
	return t.C
}
