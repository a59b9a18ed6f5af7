package scheduler

import (
	"container/heap"
	"time"
)

type (
	// timerEntry carries a registered timer between its indexes. The store
	// owns an entry from insert until remove or a non-recurring drain
	timerEntry struct {
		callback Callback
		schedule Schedule
		nextWake time.Time
		handle   Handle
		index    int
	}

	// timerStore holds live timers in two views: a min-heap ordered by
	// nextWake (duplicate wake times permitted) and a handle-keyed reverse
	// index for O(1) cancellation lookup. The heap index recorded on each
	// entry always addresses its current heap slot, so removal never scans
	// an equal-wake group. Callers serialize access with the scheduler
	// mutex; the store itself never blocks and never invokes a callback
	timerStore struct {
		byHandle map[Handle]*timerEntry
		items    []*timerEntry
		hint     Handle
	}
)

func newTimerStore() *timerStore {
	st := &timerStore{
		byHandle: map[Handle]*timerEntry{},
	}
	heap.Init(st)
	return st
}

// reserve pre-sizes the ordering index for the anticipated timer count
func (st *timerStore) reserve(n int) {
	if n <= cap(st.items) {
		return
	}
	items := make([]*timerEntry, len(st.items), n)
	copy(items, st.items)
	st.items = items
}

// allocHandle probes forward from a rolling hint for a handle value not
// currently live. Values retired by remove or drain become reusable, which
// bounds handle growth in long-running processes. Zero is never allocated
func (st *timerStore) allocHandle() Handle {
	h := st.hint
	for {
		h++
		if h <= None {
			h = None + 1
		}
		if _, live := st.byHandle[h]; !live {
			st.hint = h
			return h
		}
	}
}

// insert adds an entry to both indexes and reports whether it now holds the
// earliest wake time. Callers compute nextWake before taking the lock
func (st *timerStore) insert(e *timerEntry) bool {
	heap.Push(st, e)
	return e.index == 0
}

// remove erases the entry for a handle from both indexes and reports
// whether it held the earliest wake time. Unknown handles are a no-op;
// cancellation racing a fire is expected, not an error
func (st *timerStore) remove(h Handle) (removed, wasEarliest bool) {
	e, ok := st.byHandle[h]
	if !ok {
		return false, false
	}
	wasEarliest = e.index == 0
	heap.Remove(st, e.index)
	return true, wasEarliest
}

// drainDue removes and returns every entry due at or before now, in
// ascending wake order. Callbacks are not invoked and recurring entries are
// not re-armed here; the dispatcher reinserts them under the same lock hold
func (st *timerStore) drainDue(now time.Time) []*timerEntry {
	var due []*timerEntry
	for len(st.items) > 0 && !st.items[0].nextWake.After(now) {
		due = append(due, heap.Pop(st).(*timerEntry))
	}
	return due
}

// peekEarliestWake returns the earliest pending wake time, if any
func (st *timerStore) peekEarliestWake() (time.Time, bool) {
	if len(st.items) == 0 {
		return time.Time{}, false
	}
	return st.items[0].nextWake, true
}

// clear destroys every live timer at once
func (st *timerStore) clear() {
	for i := range st.items {
		st.items[i] = nil
	}
	st.items = st.items[:0]
	clear(st.byHandle)
}

// Len returns the number of live timers in the ordering index
func (st *timerStore) Len() int {
	return len(st.items)
}

// Less reports whether the entry at i wakes before the entry at j
func (st *timerStore) Less(i, j int) bool {
	return st.items[i].nextWake.Before(st.items[j].nextWake)
}

// Swap exchanges the heap entries at the provided indexes
func (st *timerStore) Swap(i, j int) {
	st.items[i], st.items[j] = st.items[j], st.items[i]
	st.items[i].index = i
	st.items[j].index = j
}

// Push adds an entry to the underlying heap implementation
func (st *timerStore) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(st.items)
	st.items = append(st.items, e)
	st.byHandle[e.handle] = e
}

// Pop removes an entry from the underlying heap implementation
func (st *timerStore) Pop() any {
	old := st.items
	n := len(old)
	if n == 0 {
		return nil
	}
	e := old[n-1]
	old[n-1] = nil
	st.items = old[:n-1]
	e.index = -1
	delete(st.byHandle, e.handle)
	return e
}
