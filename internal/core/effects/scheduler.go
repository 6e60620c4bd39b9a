package effects

import (
	"sync"
	"time"
)

// ExpireFunc is called with the id whose lifetime ran out.
type ExpireFunc func(id string)

// Scheduler keeps one cancellable expiry timer per object id. It is safe for
// concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]*entry
	gen     uint64
}

type entry struct {
	gen      uint64
	deadline time.Time
	timer    Timer
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock
	}
	return &Scheduler{
		clock:   clock,
		entries: make(map[string]*entry),
	}
}

// Schedule arranges for fn(id) to run after d. Scheduling an id that is
// already pending replaces the earlier timer.
func (s *Scheduler) Schedule(id string, d time.Duration, fn ExpireFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[id]; ok {
		prev.timer.Stop()
	}

	s.gen++
	gen := s.gen
	e := &entry{gen: gen, deadline: s.clock.Now().Add(d)}
	s.entries[id] = e
	e.timer = s.clock.AfterFunc(d, func() { s.fire(id, gen, fn) })
}

func (s *Scheduler) fire(id string, gen uint64, fn ExpireFunc) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.gen != gen {
		// cancelled or rescheduled after this timer was armed
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	s.mu.Unlock()

	fn(id)
}

// Cancel stops the pending expiry for id. It reports whether one was pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, id)
	return true
}

func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Remaining returns the time left before id expires.
func (s *Scheduler) Remaining(id string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return 0, false
	}
	left := e.deadline.Sub(s.clock.Now())
	if left < 0 {
		left = 0
	}
	return left, true
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop cancels every pending expiry.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
}
