// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. It also owns the embedded schema migrations and
// the translation of PostgreSQL error codes into store errors.
package postgres
