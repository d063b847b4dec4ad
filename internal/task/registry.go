package task

import (
	"fmt"
	"sync"
)

// Factory rebuilds an executable task from its persisted record.
type Factory func(rec Record) (Task, error)

// Registry maps task types to the factories that restore them after a
// restart or a stuck-task reset.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates a factory with a task type, replacing any previous one.
func (r *Registry) Register(taskType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = f
}

// Build restores the task described by rec.
func (r *Registry) Build(rec Record) (Task, error) {
	r.mu.RLock()
	f, ok := r.factories[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no factory registered for task type %q", rec.Type)
	}
	return f(rec)
}
