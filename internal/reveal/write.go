package reveal

import (
	"context"
	"io"
	"sync"
)

// Write reveals text to w at the pace of delay and returns once the last
// character is written. If ctx ends first the reveal is cancelled and the
// context error returned.
func Write(ctx context.Context, w io.Writer, text string, delay DelayModel) error {
	var (
		mu      sync.Mutex
		written int
		werr    error
		stopped bool
	)

	done := make(chan struct{})
	e := New(
		WithDelay(delay),
		WithOnUpdate(func(s State) {
			mu.Lock()
			defer mu.Unlock()

			if stopped || werr != nil {
				return
			}
			_, werr = io.WriteString(w, s.Displayed[written:])
			written = len(s.Displayed)
		}),
		WithOnComplete(func() {
			close(done)
		}),
	)
	defer e.Close()

	e.Set(text, true)

	select {
	case <-ctx.Done():
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		return ctx.Err()
	case <-done:
		mu.Lock()
		defer mu.Unlock()
		return werr
	}
}
