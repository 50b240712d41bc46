package reveal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	err := Write(context.Background(), &buf, "Hello, world!", ConstantDelay(time.Microsecond))
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", buf.String())
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, "", ConstantDelay(time.Hour)))
	assert.Empty(t, buf.String())
}

func TestWriteCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	err := Write(ctx, &buf, "this will never finish", ConstantDelay(time.Hour))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, buf.String())
}
