// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Each test runs inside its own transaction, which is rolled back when the
// test completes, so tests can run in parallel against the same schema
// without cleanup:
//
//	func TestStudentStore(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.Open(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        students := postgres.NewPostgresStudentStore(db, nil).WithTx(tx)
//	        // ...
//	    })
//	}
//
// Open skips the test when neither SCHOOL_DATABASE_URL nor DATABASE_URL is
// set, and applies the embedded migrations once per test binary.
package testdb
