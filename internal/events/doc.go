// Package events decouples services from background work.
//
// Services publish a TaskRequestEvent through an EventEmitter when they need
// work done outside the request path (for example re-sending a verification
// email that failed inline). Handlers subscribe to the event types they can
// act on; the task package provides the handler that turns events into
// persisted tasks.
package events
