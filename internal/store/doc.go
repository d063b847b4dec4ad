// Package store defines the persistence interfaces of the school registry
// and the error values shared by their implementations. Multi-table writes
// run through RunInTransaction.
package store
