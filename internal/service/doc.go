// Package service holds the application use cases: the student record
// lifecycle, the administrator bootstrap and authentication.
//
// Services validate preconditions against the stores, delegate multi-table
// writes to a single store call that owns its transaction, and translate
// store errors into the sentinels and ServiceError values the API layer maps
// to HTTP responses. Notifications run strictly after a successful commit
// and never fail the write that triggered them.
package service
