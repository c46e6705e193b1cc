package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Storage and services wrap these with operation context;
// callers branch with errors.Is.
var (
	// ErrConstraintViolation covers uniqueness, foreign-key and value-range
	// failures on writes. The write leaves no partial state behind.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrNotFound is returned by reads and updates referencing a missing id.
	// Deletes of missing ids are no-ops, not errors.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPeriodSpec rejects an unknown period or malformed start date
	// before anything is persisted.
	ErrInvalidPeriodSpec = errors.New("invalid period spec")
)

// Specific validation failures. Each matches its taxonomy root under errors.Is.
var (
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrConstraintViolation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrConstraintViolation)
	ErrEmptyUsername    = fmt.Errorf("%w: empty username", ErrConstraintViolation)
	ErrEmptyEmail       = fmt.Errorf("%w: empty email", ErrConstraintViolation)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrConstraintViolation)
	ErrMissingUser      = fmt.Errorf("%w: missing owning user", ErrConstraintViolation)
	ErrUnknownPeriod    = fmt.Errorf("%w: unknown period", ErrInvalidPeriodSpec)
	ErrMissingStartDate = fmt.Errorf("%w: missing start date", ErrInvalidPeriodSpec)
)
