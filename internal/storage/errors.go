package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AliGanji14/cost-management/internal/core"
)

// storeErr maps driver-level failures onto the shared error taxonomy so
// callers can test with errors.Is instead of inspecting SQLite messages.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if isConstraintError(err) {
		return fmt.Errorf("%w: %s", core.ErrConstraintViolation, err)
	}
	return err
}

func isConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed")
}

// Null helpers feed COALESCE-based partial updates: a nil pointer becomes
// SQL NULL, which COALESCE resolves to the current column value.

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}
