package clock

import (
	"sort"
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback. Calling it after the callback
// fired is a no-op.
type CancelFunc func()

// Clock abstracts wall time and one-shot timers so the watchdog and
// deletion paths can be driven by virtual time in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// System is the real clock backed by the time package.
type System struct{}

func NewSystem() System { return System{} }

func (System) Now() time.Time { return time.Now().UTC() }

func (System) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

type manualTimer struct {
	seq int64
	due time.Time
	fn  func()
}

// Manual is a deterministic clock for tests. Advance moves virtual time
// forward and runs due callbacks synchronously, in due order; callbacks
// may schedule further timers and those fire too if they fall within the
// advanced window.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int64
	timers map[int64]*manualTimer
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start, timers: make(map[int64]*manualTimer)}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.timers[id] = &manualTimer{seq: id, due: m.now.Add(d), fn: fn}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.timers, id)
	}
}

// Advance moves the clock forward by d, firing every callback whose due
// time falls within the window. The callback runs without the clock lock
// held, so it may call back into the clock.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		timer := m.popDue(target)
		if timer == nil {
			break
		}
		timer.fn()
	}

	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// popDue removes and returns the earliest timer due at or before target,
// moving the clock to its due time. Ties break by scheduling order.
func (m *Manual) popDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := make([]*manualTimer, 0, len(m.timers))
	for _, t := range m.timers {
		if !t.due.After(target) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].due.Equal(candidates[j].due) {
			return candidates[i].seq < candidates[j].seq
		}
		return candidates[i].due.Before(candidates[j].due)
	})

	next := candidates[0]
	delete(m.timers, next.seq)
	if next.due.After(m.now) {
		m.now = next.due
	}
	return next
}

// PendingTimers reports how many callbacks are scheduled but not yet due.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
