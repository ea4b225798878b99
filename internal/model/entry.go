// Package model defines the core ledger types shared across the application.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntryKind distinguishes the two independent ledger types.
type EntryKind string

// Ledger types. Payables and receivables live in separate tables with
// separate uniqueness scopes.
const (
	KindPayable    EntryKind = "pagar"
	KindReceivable EntryKind = "receber"
)

// Valid reports whether the kind is one of the two known ledger types.
func (k EntryKind) Valid() bool {
	return k == KindPayable || k == KindReceivable
}

// Entry is a persisted payable or receivable obligation.
type Entry struct {
	Kind        EntryKind
	Description string
	Date        string // YYYY-MM-DD, may be empty
	AccountName string
	Category    string // denormalized free text, not foreign-keyed
	ExternalID  string // statement identifier or fingerprint; empty for manual entries
	ID          int64
	AccountID   int64
	Amount      float64
	Settled     bool // pago for payables, recebido for receivables
}

// Account is a named financial account referenced by entries.
type Account struct {
	Name string
	ID   int64
}

// Category is an advisory category name. Entries keep their own category
// string, so renaming or deleting a category never cascades.
type Category struct {
	Name string
	ID   int64
}

// ParseAmount converts user-supplied amount text to a float64. It accepts
// plain decimals with either separator, an optional R$ prefix, and the
// Brazilian convention of "." for thousands with "," for decimals.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// dateFormats are the input shapes accepted by NormalizeDate, tried in order.
var dateFormats = []string{"2006-01-02", "02/01/2006", "20060102"}

// NormalizeDate converts known date shapes to YYYY-MM-DD. Unknown shapes
// pass through unchanged so legacy rows are never mangled; empty stays empty.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
