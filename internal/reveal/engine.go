// Package reveal presents an already complete string as if it were arriving
// one character at a time.
package reveal

import (
	"sync"
)

type Phase int

const (
	Idle Phase = iota
	Revealing
	Complete
)

var phaseName = map[Phase]string{
	Idle:      "idle",
	Revealing: "revealing",
	Complete:  "complete",
}

func (p Phase) String() string {
	return phaseName[p]
}

// State is a snapshot of an engine. Displayed is always a prefix of Source
// and Cursor counts the characters in Displayed.
type State struct {
	Source    string
	Displayed string
	Cursor    int
	Complete  bool
	Phase     Phase
}

type Option func(*Engine)

func WithDelay(d DelayModel) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithOnComplete sets a callback run once each time a reveal finishes.
func WithOnComplete(fn func()) Option {
	return func(e *Engine) {
		e.onComplete = fn
	}
}

// WithOnUpdate sets a callback run after every state change.
func WithOnUpdate(fn func(State)) Option {
	return func(e *Engine) {
		e.onUpdate = fn
	}
}

// Engine reveals one string at a time. It holds at most one pending tick.
// Callbacks run without the engine lock held, so they may call State and
// Close, but not Set. They are delivered one at a time and in order: a
// notification overtaken by a newer one is dropped.
type Engine struct {
	mu sync.Mutex

	// notifyMu serializes callbacks. seq numbers state changes under mu.
	notifyMu sync.Mutex
	seq      uint64

	delay      DelayModel
	scheduler  Scheduler
	onComplete func()
	onUpdate   func(State)

	text    string
	source  []rune
	cursor  int
	phase   Phase
	started bool

	timer  Timer
	gen    uint64
	closed bool
}

func New(opts ...Option) *Engine {
	e := &Engine{
		delay:     ConstantDelay(DefaultSpeed),
		scheduler: TimerScheduler{},
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Set starts revealing text, or shows it at once when active is false.
// Calling Set again with the text already started is a no-op, so callers may
// re-apply their inputs freely.
func (e *Engine) Set(text string, active bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	if e.started && text == e.text {
		if active && e.phase != Idle {
			e.mu.Unlock()
			return
		}
		if !active && e.phase == Complete {
			e.mu.Unlock()
			return
		}
	}

	// Any in-flight tick belongs to the previous reveal
	e.cancel()

	e.text = text
	e.source = []rune(text)
	e.started = true

	done := false
	if !active || len(e.source) == 0 {
		e.cursor = len(e.source)
		e.phase = Complete
		done = true
	} else {
		e.cursor = 0
		e.phase = Revealing
		e.schedule()
	}

	st := e.snapshot()
	seq := e.next()
	e.mu.Unlock()

	e.notify(seq, st, done)
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot()
}

// Close cancels any pending tick. A closed engine ignores Set and stale ticks,
// and notifications still in flight are dropped.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancel()
	e.closed = true
	e.next()
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen || e.phase != Revealing {
		e.mu.Unlock()
		return
	}

	e.timer = nil
	e.cursor++

	done := false
	if e.cursor == len(e.source) {
		e.phase = Complete
		done = true
	} else {
		e.schedule()
	}

	st := e.snapshot()
	seq := e.next()
	e.mu.Unlock()

	e.notify(seq, st, done)
}

// schedule must be called with mu held.
func (e *Engine) schedule() {
	gen := e.gen
	next := e.source[e.cursor]
	e.timer = e.scheduler.Schedule(e.delay.Delay(next), func() {
		e.tick(gen)
	})
}

// cancel must be called with mu held.
func (e *Engine) cancel() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

// snapshot must be called with mu held.
func (e *Engine) snapshot() State {
	return State{
		Source:    e.text,
		Displayed: string(e.source[:e.cursor]),
		Cursor:    e.cursor,
		Complete:  e.phase == Complete,
		Phase:     e.phase,
	}
}

// next must be called with mu held.
func (e *Engine) next() uint64 {
	e.seq++
	return e.seq
}

func (e *Engine) notify(seq uint64, st State, done bool) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	latest := e.seq
	e.mu.Unlock()

	// Superseded by a newer state, which notifies on its own, or by Close
	if seq != latest {
		return
	}

	if e.onUpdate != nil {
		e.onUpdate(st)
	}
	if done && e.onComplete != nil {
		e.onComplete()
	}
}
