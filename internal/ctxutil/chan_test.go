package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	ch := make(chan string, 1)
	ch <- "career"

	v, ok := Next(context.Background(), ch)
	assert.True(t, ok)
	assert.Equal(t, "career", v)

	close(ch)
	_, ok = Next(context.Background(), ch)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok = Next(ctx, make(chan string))
	assert.False(t, ok)
}

func TestSend(t *testing.T) {
	ch := make(chan int, 1)
	assert.True(t, Send(context.Background(), ch, 1))
	assert.Equal(t, 1, <-ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, Send(ctx, make(chan int), 2))
}
