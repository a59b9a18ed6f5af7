package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/cadence/pkg/scheduler"
)

type (
	// Wrapper wraps testify assertions with Cadence-specific helpers
	Wrapper struct {
		*testing.T
		*assert.Assertions
		Require *require.Assertions
	}
)

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus Cadence-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    require.New(t),
	}
}

// HandleValid asserts that a registration returned a usable handle
func (w *Wrapper) HandleValid(h scheduler.Handle) {
	w.Helper()
	w.NotEqual(scheduler.None, h)
}

// LiveTimers asserts the scheduler's current live timer count
func (w *Wrapper) LiveTimers(s *scheduler.Scheduler, expected int) {
	w.Helper()
	w.Equal(expected, s.Len())
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}

// Never runs a condition repeatedly for the full window and fails the test
// the moment it passes
func (w *Wrapper) Never(
	condition func() bool, window time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		if condition() {
			w.Fail(msg, args...)
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
}
