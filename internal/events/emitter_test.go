package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	err   error
	count int
	last  *TaskRequestEvent
}

func (h *countingHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.count++
	h.last = event
	return h.err
}

func newEmitter() *InMemoryEventEmitter {
	return NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustEvent(t *testing.T, eventType string) *TaskRequestEvent {
	t.Helper()
	event, err := NewTaskRequestEvent(eventType, map[string]string{"k": "v"})
	require.NoError(t, err)
	return event
}

func TestInMemoryEventEmitter_NoHandlers(t *testing.T) {
	assert.NoError(t, newEmitter().EmitEvent(context.Background(), mustEvent(t, "verification_email")))
}

func TestInMemoryEventEmitter_DeliversToEverySubscriber(t *testing.T) {
	emitter := newEmitter()
	h1, h2 := &countingHandler{}, &countingHandler{}
	emitter.Subscribe("verification_email", h1)
	emitter.Subscribe("verification_email", h2)

	event := mustEvent(t, "verification_email")
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	assert.Equal(t, 1, h1.count)
	assert.Equal(t, 1, h2.count)
	assert.Same(t, event, h1.last)
}

func TestInMemoryEventEmitter_Subscribe(t *testing.T) {
	emitter := newEmitter()
	mail, other := &countingHandler{}, &countingHandler{}
	emitter.Subscribe("verification_email", mail)
	emitter.Subscribe("report_export", other)

	require.NoError(t, emitter.EmitEvent(context.Background(), mustEvent(t, "verification_email")))

	assert.Equal(t, 1, mail.count)
	assert.Equal(t, 0, other.count)
}

func TestInMemoryEventEmitter_HandlerErrors(t *testing.T) {
	emitter := newEmitter()
	errA, errB := errors.New("a failed"), errors.New("b failed")
	ha := &countingHandler{err: errA}
	ok := &countingHandler{}
	hb := &countingHandler{err: errB}
	emitter.Subscribe("verification_email", ha)
	emitter.Subscribe("verification_email", ok)
	emitter.Subscribe("verification_email", hb)

	err := emitter.EmitEvent(context.Background(), mustEvent(t, "verification_email"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 1, ok.count)
	assert.Equal(t, 1, hb.count)
}

func TestInMemoryEventEmitter_UnmatchedTypeIsDropped(t *testing.T) {
	emitter := newEmitter()
	h := &countingHandler{}
	emitter.Subscribe("verification_email", h)

	require.NoError(t, emitter.EmitEvent(context.Background(), mustEvent(t, "report_export")))
	assert.Zero(t, h.count)
}
