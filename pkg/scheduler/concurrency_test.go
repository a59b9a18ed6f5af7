package scheduler_test

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kode4food/cadence/internal/assert"
	"github.com/kode4food/cadence/internal/assert/wait"
	"github.com/kode4food/cadence/pkg/scheduler"
)

// these tests run against the system clock; periods are chosen so the
// asserted relationships hold under generous scheduling slack

func newRunningScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	s, err := scheduler.New(&scheduler.Config{
		Logger:       slog.New(slog.DiscardHandler),
		CapacityHint: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Reset)
	return s
}

func TestFasterTimerFiresMoreOften(t *testing.T) {
	w := assert.New(t)
	s := newRunningScheduler(t)

	var slow, fast atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := s.AddTimer(50*time.Millisecond,
			func(scheduler.Handle) {
				slow.Add(1)
			})
		w.NoError(err)
	}()
	go func() {
		defer wg.Done()
		_, err := s.AddTimer(10*time.Millisecond,
			func(scheduler.Handle) {
				fast.Add(1)
			})
		w.NoError(err)
	}()
	wg.Wait()

	w.Eventually(func() bool {
		return fast.Load() >= 5
	}, 5*time.Second, "fast timer should reach 5 fires")

	w.Eventually(func() bool {
		return slow.Load() >= 1 && fast.Load() > slow.Load()
	}, 5*time.Second, "slow timer should trail the fast one")

	// around the fast timer's 5th fire the slow timer has fired roughly
	// once; allow slack for a loaded test host
	w.LessOrEqual(slow.Load(), fast.Load()/2)
}

func TestCancelledHandleNeverFires(t *testing.T) {
	w := assert.New(t)
	s := newRunningScheduler(t)
	rec := wait.NewRecorder()

	// churn other handles from several goroutines while the target is
	// cancelled before its first fire
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				h, err := s.AddTimer(5*time.Millisecond, rec.Callback())
				if err != nil {
					return
				}
				time.Sleep(time.Millisecond)
				s.RemoveTimer(h)
			}
		}()
	}

	target, err := s.AddTimer(100*time.Millisecond, rec.Callback())
	w.Require.NoError(err)
	s.RemoveTimer(target)

	wait.On(t, rec).ForNone(200*time.Millisecond, wait.Handle(target))
	close(stop)
	wg.Wait()
}

func TestResetHaltsAllPendingTimers(t *testing.T) {
	w := assert.New(t)
	s := newRunningScheduler(t)

	var fires atomic.Int32
	for i := 0; i < 20; i++ {
		_, err := s.AddTimer(5*time.Millisecond,
			func(scheduler.Handle) {
				fires.Add(1)
			})
		w.Require.NoError(err)
	}
	w.LiveTimers(s, 20)

	w.Eventually(func() bool {
		return fires.Load() > 0
	}, 5*time.Second, "timers should fire before reset")

	s.Reset()
	w.LiveTimers(s, 0)

	settled := fires.Load()
	w.Never(func() bool {
		return fires.Load() != settled
	}, 100*time.Millisecond, "no fires may follow a reset")
}

func TestConcurrentAddRemoveKeepsCounts(t *testing.T) {
	w := assert.New(t)
	s := newRunningScheduler(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var handles []scheduler.Handle
			for j := 0; j < 50; j++ {
				h, err := s.AddTimer(time.Minute,
					func(scheduler.Handle) {})
				if w.NoError(err) {
					handles = append(handles, h)
				}
			}
			for _, h := range handles[:25] {
				s.RemoveTimer(h)
			}
		}()
	}
	wg.Wait()

	// none of the minute-long timers fired, so exactly the survivors remain
	w.LiveTimers(s, 8*25)
}
