// Package wait provides test helpers for observing timer callback fires
package wait

import (
	"testing"
	"time"

	"github.com/kode4food/cadence/pkg/scheduler"
)

type (
	// Fire records a single callback invocation
	Fire struct {
		Handle scheduler.Handle
		At     time.Time
	}

	// Recorder captures callback fires for later inspection. Its Callback
	// method hands the scheduler a callback that records each invocation
	Recorder struct {
		fires chan Fire
	}

	// Wait consumes recorded fires with a deadline
	Wait struct {
		t       *testing.T
		rec     *Recorder
		timeout time.Duration
	}

	// Filter selects the fires a Wait should count
	Filter func(Fire) bool
)

// DefaultTimeout bounds how long a Wait blocks before failing the test
const DefaultTimeout = 5 * time.Second

// NewRecorder creates a Recorder with room for a burst of fires
func NewRecorder() *Recorder {
	return &Recorder{
		fires: make(chan Fire, 256),
	}
}

// Callback returns a scheduler callback that records each fire. A full
// recorder drops fires rather than blocking the dispatcher
func (r *Recorder) Callback() scheduler.Callback {
	return func(h scheduler.Handle) {
		select {
		case r.fires <- Fire{Handle: h, At: time.Now()}:
		default:
		}
	}
}

// On creates a Wait over the recorder's fires
func On(t *testing.T, r *Recorder) *Wait {
	return &Wait{
		t:       t,
		rec:     r,
		timeout: DefaultTimeout,
	}
}

// WithTimeout derives a Wait with a different deadline
func (w *Wait) WithTimeout(timeout time.Duration) *Wait {
	res := *w
	res.timeout = timeout
	return &res
}

// ForFires waits for the given number of matching fires
func (w *Wait) ForFires(count int, filter Filter) {
	w.t.Helper()

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	for seen := 0; seen < count; {
		select {
		case fire := <-w.rec.fires:
			if !filter(fire) {
				continue
			}
			seen++
		case <-deadline.C:
			w.t.Fatalf("timeout waiting for %d fires", count)
		}
	}
}

// ForFire waits for a single matching fire
func (w *Wait) ForFire(filter Filter) {
	w.t.Helper()
	w.ForFires(1, filter)
}

// ForNone asserts that no matching fire arrives within the window
func (w *Wait) ForNone(window time.Duration, filter Filter) {
	w.t.Helper()

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	for {
		select {
		case fire := <-w.rec.fires:
			if filter(fire) {
				w.t.Fatalf("unexpected fire for handle %d", fire.Handle)
			}
		case <-deadline.C:
			return
		}
	}
}

// And composes fire filters and returns true when all match
func And(filters ...Filter) Filter {
	return func(fire Fire) bool {
		for _, filter := range filters {
			if !filter(fire) {
				return false
			}
		}
		return true
	}
}

// Any matches every fire
func Any() Filter {
	return func(Fire) bool { return true }
}

// Handle creates a filter for fires of a single timer
func Handle(h scheduler.Handle) Filter {
	return Handles(h)
}

// Handles creates a filter for fires of the given timers
func Handles(hs ...scheduler.Handle) Filter {
	if len(hs) == 0 {
		return func(Fire) bool { return false }
	}
	lookup := make(map[scheduler.Handle]struct{}, len(hs))
	for _, h := range hs {
		lookup[h] = struct{}{}
	}
	return func(fire Fire) bool {
		_, ok := lookup[fire.Handle]
		return ok
	}
}
