package reveal

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTimerCallbacksArriveInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	text := strings.Repeat("abcdef", 6)

	for run := 0; run < 50; run++ {
		var (
			mu       sync.Mutex
			cursors  []int
			late     int
			complete bool
		)
		done := make(chan struct{})

		e := New(
			WithDelay(ConstantDelay(0)),
			WithOnUpdate(func(st State) {
				time.Sleep(50 * time.Microsecond)

				mu.Lock()
				defer mu.Unlock()
				if complete {
					late++
				}
				cursors = append(cursors, st.Cursor)
			}),
			WithOnComplete(func() {
				mu.Lock()
				defer mu.Unlock()
				complete = true
				close(done)
			}),
		)

		e.Set(text, true)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("reveal never completed")
		}

		// Give overtaken ticks time to try their callbacks
		time.Sleep(5 * time.Millisecond)
		e.Close()

		mu.Lock()
		require.NotEmpty(t, cursors)
		for i := 1; i < len(cursors); i++ {
			require.GreaterOrEqual(t, cursors[i], cursors[i-1], "run %d: %v", run, cursors)
		}
		assert.Equal(t, len(text), cursors[len(cursors)-1])
		assert.Zero(t, late, "run %d: update after completion", run)
		mu.Unlock()
	}
}

func TestSetDropsUpdatesForReplacedText(t *testing.T) {
	defer goleak.VerifyNone(t)

	old := strings.Repeat("old text ", 4)

	for run := 0; run < 100; run++ {
		var (
			returned atomic.Bool
			stale    atomic.Int32
		)

		e := New(
			WithDelay(ConstantDelay(0)),
			WithOnUpdate(func(st State) {
				time.Sleep(20 * time.Microsecond)
				if returned.Load() && st.Source == old {
					stale.Add(1)
				}
			}),
		)

		e.Set(old, true)
		time.Sleep(time.Duration(run%5) * 30 * time.Microsecond)
		e.Set("new", false)
		returned.Store(true)

		time.Sleep(2 * time.Millisecond)
		e.Close()

		assert.Zero(t, stale.Load(), "run %d", run)
		assert.Equal(t, "new", e.State().Displayed)
	}
}

func TestCloseDropsInFlightUpdates(t *testing.T) {
	var updates atomic.Int32
	e, s, _ := newEngine(t, ConstantDelay(time.Millisecond))
	e.onUpdate = func(State) { updates.Add(1) }

	e.Set("abc", true)
	assert.Equal(t, int32(1), updates.Load())

	e.mu.Lock()
	seq := e.seq
	st := e.snapshot()
	e.mu.Unlock()

	e.Close()
	e.notify(seq, st, false)

	assert.Equal(t, int32(1), updates.Load())
	assert.Equal(t, 0, s.Pending())
}
