package wait_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/cadence/internal/assert/wait"
	"github.com/kode4food/cadence/pkg/scheduler"
)

func TestHandlesFilter(t *testing.T) {
	filter := wait.Handles(scheduler.Handle(1), scheduler.Handle(2))
	assert.True(t, filter(wait.Fire{Handle: 1}))
	assert.True(t, filter(wait.Fire{Handle: 2}))
	assert.False(t, filter(wait.Fire{Handle: 3}))

	none := wait.Handles()
	assert.False(t, none(wait.Fire{Handle: 1}))
}

func TestAndComposesFilters(t *testing.T) {
	early := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)
	after := func(cutoff time.Time) wait.Filter {
		return func(f wait.Fire) bool { return f.At.After(cutoff) }
	}

	filter := wait.And(wait.Handle(1), after(early))
	assert.True(t, filter(wait.Fire{Handle: 1, At: early.Add(time.Second)}))
	assert.False(t, filter(wait.Fire{Handle: 2, At: early.Add(time.Second)}))
	assert.False(t, filter(wait.Fire{Handle: 1, At: early}))
}

func TestRecorderForFires(t *testing.T) {
	rec := wait.NewRecorder()
	cb := rec.Callback()

	go func() {
		cb(scheduler.Handle(7))
		cb(scheduler.Handle(8))
		cb(scheduler.Handle(7))
	}()

	wait.On(t, rec).ForFires(2, wait.Handle(7))
}

func TestForNoneIgnoresOtherHandles(t *testing.T) {
	rec := wait.NewRecorder()
	cb := rec.Callback()
	cb(scheduler.Handle(9))

	wait.On(t, rec).ForNone(50*time.Millisecond, wait.Handle(1))
}
