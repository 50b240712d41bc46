package reveal

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled tick. Stop reports whether the tick was
// prevented from running.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

// TimerScheduler schedules ticks on the wall clock. Ticks run on their own
// goroutine.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// ManualScheduler is a virtual clock. Nothing runs until Advance or Next is
// called, and ticks run on the caller's goroutine.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{
		s:   s,
		at:  s.now + d,
		seq: s.seq,
		fn:  fn,
	}
	s.pending = append(s.pending, t)

	return t
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.now
}

// Pending returns the number of ticks that are scheduled and not stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every tick that falls due in
// order, including ticks scheduled by ticks. It returns the number run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		t := s.earliest()
		if t == nil || t.at > target {
			s.now = target
			s.mu.Unlock()
			return fired
		}
		s.now = t.at
		t.fired = true
		s.compact()
		s.mu.Unlock()

		t.fn()
		fired++
	}
}

// Next jumps to the earliest pending tick and runs it. It returns false if
// nothing is pending.
func (s *ManualScheduler) Next() bool {
	s.mu.Lock()
	t := s.earliest()
	if t == nil {
		s.mu.Unlock()
		return false
	}
	s.now = t.at
	t.fired = true
	s.compact()
	s.mu.Unlock()

	t.fn()
	return true
}

// earliest must be called with mu held.
func (s *ManualScheduler) earliest() *manualTimer {
	var next *manualTimer
	for _, t := range s.pending {
		if t.stopped || t.fired {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// compact must be called with mu held.
func (s *ManualScheduler) compact() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live
}
