package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations. Check with errors.Is.
var (
	// ErrAlreadyExists is returned when a CREATE hits an existing record.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrTransactionConflict is returned when concurrent writes touch the
	// same records. Callers should retry or skip.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// wrapQueryError maps SurrealDB query errors onto the sentinels above and
// returns anything else unchanged.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		switch {
		case strings.Contains(msg, "already exists"):
			return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
		case strings.Contains(msg, "Transaction conflict"):
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}
	return err
}
