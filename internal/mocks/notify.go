package mocks

import (
	"context"
	"sync"

	"github.com/schoolmgmt/school-api/internal/events"
	"github.com/schoolmgmt/school-api/internal/notify"
)

// MockNotifier implements notify.Notifier and records every message.
type MockNotifier struct {
	mu   sync.Mutex
	Err  error
	Sent []notify.VerificationEmail
}

var _ notify.Notifier = (*MockNotifier)(nil)

// SendAccountVerificationEmail implements notify.Notifier.
func (m *MockNotifier) SendAccountVerificationEmail(ctx context.Context, msg notify.VerificationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return m.Err
}

// MockEventEmitter implements events.EventEmitter and records every event.
type MockEventEmitter struct {
	mu     sync.Mutex
	Err    error
	Events []*events.TaskRequestEvent
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}
