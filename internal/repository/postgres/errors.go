package postgres

import (
	"fmt"
	"strings"

	"github.com/srakshitha0802/Book-review-application/pkg/database"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

// dbError wraps a low-level database error with its operation. Connection
// failures are classified as Unavailable so the transport layer answers 503
// and the client knows a retry is safe; everything else stays an internal
// error.
func dbError(op string, err error) error {
	if database.IsConnectionError(err) {
		return fmt.Errorf("%s: %w", op, apperrors.Unavailable(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
