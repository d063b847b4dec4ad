// Package mocks provides shared test doubles for the store, auth, notify and
// events interfaces.
//
// Most mocks expose function fields that default to a fixed value when left
// nil:
//
//	hasher := &mocks.MockPasswordHasher{
//	    VerifyFn: func(digest, password string) bool { return password == "secret1" },
//	}
//
// MockStudentStore is built on testify/mock for tests that assert call
// sequences.
package mocks
