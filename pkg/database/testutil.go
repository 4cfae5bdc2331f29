package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool returns a pgxmock pool that stands in for DBTX in repository
// tests. Expectations match SQL by regular expression, so a test can pin
// just the query fragment it cares about, the WHERE clause or the lock,
// without restating the whole column list. Finish each test with
// ExpectationsWereMet to catch queries that never ran.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
}
