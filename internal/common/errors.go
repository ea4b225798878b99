// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrAccountInUse   = errors.New("account has entries and cannot be deleted")

	// Import errors.
	ErrStatementUnreadable = errors.New("statement file unreadable")
	ErrInvalidKind         = errors.New("invalid ledger type")
)
