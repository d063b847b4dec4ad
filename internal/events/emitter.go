package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

type subscription struct {
	eventType string
	handler   EventHandler
}

// InMemoryEventEmitter dispatches events synchronously to subscribed handlers.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no subscribers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// Subscribe registers handler for events of eventType.
func (e *InMemoryEventEmitter) Subscribe(eventType string, handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{eventType: eventType, handler: handler})
	e.logger.Debug("registered event handler", "event_type", eventType, "handler_count", len(e.subs))
}

// EmitEvent delivers event to every matching handler in registration order.
// A failing handler does not stop delivery; all handler errors are joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	e.mu.RLock()
	var targets []EventHandler
	for _, s := range e.subs {
		if s.eventType == event.Type {
			targets = append(targets, s.handler)
		}
	}
	e.mu.RUnlock()

	if len(targets) == 0 {
		e.logger.Warn("no handlers for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var errs []error
	for i, h := range targets {
		if err := h.HandleEvent(ctx, event); err != nil {
			e.logger.Error("event handler failed",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
