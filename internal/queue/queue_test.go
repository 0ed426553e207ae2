package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	want := Message{Type: TypeAttendanceMarked, Body: []byte("rec-1")}
	require.NoError(t, q.Publish(ctx, want))

	select {
	case got := <-msgs:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, q.Publish(ctx, Message{Type: "t"}))
	cancel()

	// Buffer is full and the context is cancelled, so publish must not block.
	err := q.Publish(ctx, Message{Type: "t"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeAttendanceMarked, Body: []byte("rec-1")}
	payload, err := encode(msg)
	require.NoError(t, err)

	got, err := decode(payload)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode("not json")
	assert.Error(t, err)

	_, err = decode(`{"body":"cmVjLTE="}`)
	assert.Error(t, err)
}
