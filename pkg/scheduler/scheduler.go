package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/cadence/pkg/log"
)

type (
	// Handle identifies a live timer registration and is used to cancel it.
	// Handles are unique among live timers; a retired value may be reused
	Handle int32

	// Callback is invoked on the dispatch goroutine each time its timer
	// fires, receiving the handle of the timer that fired. Callbacks run
	// serially in ascending wake order, so they must be fast or hand work
	// off to another goroutine. Panics are not intercepted
	Callback func(Handle)

	// Scheduler executes registered callbacks on a single dispatch
	// goroutine with wake-on-earliest efficiency. Construct with New, start
	// with Run, and tear down with Reset; each instance is independent
	Scheduler struct {
		now       Clock
		makeTimer TimerConstructor
		log       *slog.Logger

		mu      sync.Mutex
		store   *timerStore
		state   lifecycle
		started bool

		wake chan struct{}
		stop chan struct{}
		done chan struct{}
	}

	lifecycle uint8
)

const (
	stateNew lifecycle = iota
	stateRunning
	stateStopped
)

// None is the zero Handle; it never refers to a live timer
const None Handle = 0

var (
	// ErrAlreadyRunning is raised when Run is called twice
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrStopped is raised for operations on a reset scheduler
	ErrStopped = errors.New("scheduler stopped")

	// ErrNegativeDelay is raised for a one-shot delay below zero
	ErrNegativeDelay = errors.New("delay cannot be negative")

	// ErrNilSchedule is raised when a nil Schedule is registered
	ErrNilSchedule = errors.New("schedule cannot be nil")

	// ErrNilCallback is raised when a nil Callback is registered
	ErrNilCallback = errors.New("callback cannot be nil")

	// ErrExhaustedSchedule is raised when a schedule has no next occurrence
	ErrExhaustedSchedule = errors.New("schedule has no next occurrence")
)

// New creates a scheduler from the provided configuration; nil selects the
// defaults. The dispatcher does not start until Run is called
func New(cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		now:       cfg.clock(),
		makeTimer: cfg.makeTimer(),
		log:       cfg.logger(),
		store:     newTimerStore(),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.store.reserve(cfg.CapacityHint)
	return s, nil
}

// Reserve pre-sizes internal storage for the anticipated number of timers.
// Call before Run; once the dispatcher is running it is a safe no-op
func (s *Scheduler) Reserve(capacityHint int) {
	if capacityHint < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateNew {
		return
	}
	s.store.reserve(capacityHint)
}

// Run starts the dispatch goroutine. Call once per scheduler lifetime; a
// second call reports ErrAlreadyRunning and a call after Reset reports
// ErrStopped. Timers registered before Run are picked up at start
func (s *Scheduler) Run() error {
	s.mu.Lock()
	switch s.state {
	case stateRunning:
		s.mu.Unlock()
		return ErrAlreadyRunning
	case stateStopped:
		s.mu.Unlock()
		return ErrStopped
	}
	s.state = stateRunning
	s.started = true
	s.mu.Unlock()

	s.log.Info("Scheduler started")
	go s.dispatch()
	return nil
}

// AddTimer registers a callback to fire once per period, repeatedly, until
// cancelled. Safe to call from any goroutine, including callbacks
func (s *Scheduler) AddTimer(
	period time.Duration, callback Callback,
) (Handle, error) {
	if period <= 0 {
		return None, ErrNonPositivePeriod
	}
	return s.AddSchedule(Every(period), callback)
}

// AddOnce registers a callback to fire a single time after delay, after
// which its handle is retired
func (s *Scheduler) AddOnce(
	delay time.Duration, callback Callback,
) (Handle, error) {
	if delay < 0 {
		return None, ErrNegativeDelay
	}
	if callback == nil {
		return None, ErrNilCallback
	}
	return s.register(nil, callback, s.now().Add(delay))
}

// AddCron registers a callback to fire at each occurrence of the provided
// cron expression
func (s *Scheduler) AddCron(expr string, callback Callback) (Handle, error) {
	sched, err := Cron(expr)
	if err != nil {
		return None, err
	}
	return s.AddSchedule(sched, callback)
}

// AddSchedule registers a callback against an arbitrary schedule. The first
// wake is the schedule's next occurrence after the current time, computed
// before any lock is taken
func (s *Scheduler) AddSchedule(
	sched Schedule, callback Callback,
) (Handle, error) {
	if sched == nil {
		return None, ErrNilSchedule
	}
	if callback == nil {
		return None, ErrNilCallback
	}
	next, ok := sched.Next(s.now())
	if !ok {
		return None, ErrExhaustedSchedule
	}
	return s.register(sched, callback, next)
}

// RemoveTimer cancels the timer for a handle. Unknown or already-retired
// handles are a silent no-op; cancellation racing a fire is expected and an
// in-flight callback simply completes
func (s *Scheduler) RemoveTimer(h Handle) {
	s.mu.Lock()
	removed, wasEarliest := s.store.remove(h)
	s.mu.Unlock()

	if !removed {
		return
	}
	if wasEarliest {
		s.signalWake()
	}
	s.log.Debug("Timer removed", log.Handle(h))
}

// Reset stops the dispatcher and destroys all timers at once. It is
// idempotent and safe from any goroutine except a running callback: a
// callback executes on the dispatch goroutine itself, so resetting from
// there would wait on its own exit
func (s *Scheduler) Reset() {
	s.mu.Lock()
	wasRunning := s.state == stateRunning
	started := s.started
	destroyed := s.store.Len()
	s.state = stateStopped
	s.store.clear()
	s.mu.Unlock()

	if wasRunning {
		close(s.stop)
	}
	if started {
		<-s.done
	}
	if wasRunning {
		s.log.Info("Scheduler stopped", log.Count(destroyed))
	}
}

// Len returns the number of live timers
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

func (s *Scheduler) register(
	sched Schedule, callback Callback, nextWake time.Time,
) (Handle, error) {
	s.mu.Lock()
	if s.state == stateStopped {
		s.mu.Unlock()
		return None, ErrStopped
	}
	e := &timerEntry{
		handle:   s.store.allocHandle(),
		callback: callback,
		schedule: sched,
		nextWake: nextWake,
	}
	becameEarliest := s.store.insert(e)
	s.mu.Unlock()

	if becameEarliest {
		s.signalWake()
	}
	s.log.Debug("Timer added", log.Handle(e.handle), log.At(nextWake))
	return e.handle, nil
}

// signalWake nudges the dispatcher to re-evaluate its sleep target. The
// send never blocks; a pending signal already covers this mutation and a
// redundant wake only costs one extra loop pass
func (s *Scheduler) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// dispatch is the scheduler's single dispatch goroutine. Each pass drains
// and re-arms due timers under one lock hold, invokes their callbacks
// outside the lock in ascending wake order, then sleeps until the earliest
// pending wake or the next wake signal. With no timers pending it blocks
// indefinitely on the wake channel rather than polling
func (s *Scheduler) dispatch() {
	defer close(s.done)

	timer := s.makeTimer(0)
	defer timer.Stop()
	var timerCh <-chan time.Time

	for {
		now := s.now()
		s.mu.Lock()
		due := s.store.drainDue(now)
		for _, e := range due {
			if e.schedule == nil {
				continue
			}
			next, ok := e.schedule.Next(now)
			if !ok {
				continue
			}
			e.nextWake = next
			s.store.insert(e)
		}
		s.mu.Unlock()

		for _, e := range due {
			e.callback(e.handle)
		}

		s.mu.Lock()
		next, pending := s.store.peekEarliestWake()
		s.mu.Unlock()

		if pending {
			delay := next.Sub(s.now())
			if delay < 0 {
				delay = 0
			}
			timer.Reset(delay)
			timerCh = timer.Channel()
		} else {
			timer.Stop()
			timerCh = nil
		}

		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-timerCh:
		}
	}
}
