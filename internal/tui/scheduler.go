package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spotdemo4/quick-coach/internal/reveal"
)

type revealTickMsg struct {
	timer *teaTimer
}

type teaTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *teaTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// teaScheduler runs reveal ticks as messages on the bubbletea event loop.
// Schedule only queues the tick; Flush hands the queued ticks to bubbletea.
// It must only be used from Update.
type teaScheduler struct {
	queued  []tea.Cmd
	pending []*teaTimer
}

func (s *teaScheduler) Schedule(d time.Duration, fn func()) reveal.Timer {
	t := &teaTimer{fn: fn}
	s.pending = append(s.pending, t)
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return revealTickMsg{timer: t}
	}))

	return t
}

// Fire runs the tick unless it was stopped.
func (s *teaScheduler) Fire(msg revealTickMsg) {
	t := msg.timer
	if t == nil || t.stopped || t.fired {
		return
	}

	t.fired = true
	t.fn()
}

func (s *teaScheduler) Flush() tea.Cmd {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live

	if len(s.queued) == 0 {
		return nil
	}

	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}

// Pending returns the ticks that have been scheduled and not run or stopped.
func (s *teaScheduler) Pending() []*teaTimer {
	live := []*teaTimer{}
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	return live
}
