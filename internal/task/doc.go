// Package task runs background work that must survive request boundaries
// and process restarts. Tasks are persisted before they are queued, so a
// crash leaves them pending in the tasks table and Recover picks them up on
// the next start. The only task today re-sends verification emails whose
// first delivery failed.
package task
