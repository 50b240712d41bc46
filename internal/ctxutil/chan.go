package ctxutil

import "context"

// Next receives from channel unless ctx ends first.
func Next[T any](ctx context.Context, channel <-chan T) (out T, ok bool) {
	select {
	case out, ok = <-channel:
		return out, ok
	case <-ctx.Done():
		return out, false
	}
}

// Send delivers v on channel unless ctx ends first.
func Send[T any](ctx context.Context, channel chan<- T, v T) bool {
	select {
	case channel <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
