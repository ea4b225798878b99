// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidKind  = errors.New("invalid ledger type")
	ErrInvalidEntry = errors.New("invalid entry")
	ErrInvalidID    = errors.New("id must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateKind ensures the ledger type is one of the two known kinds.
func validateKind(kind model.EntryKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

// validateID ensures a row identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateEntry validates an entry before insert or update.
func validateEntry(entry *model.Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if err := validateKind(entry.Kind); err != nil {
		return err
	}
	if entry.Amount < 0 || math.IsNaN(entry.Amount) || math.IsInf(entry.Amount, 0) {
		return fmt.Errorf("%w: amount must be a non-negative magnitude", ErrInvalidEntry)
	}
	if entry.AccountID <= 0 {
		return fmt.Errorf("%w: missing account", ErrInvalidEntry)
	}
	return nil
}
