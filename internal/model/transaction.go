package model

import (
	"crypto/sha1" //nolint:gosec // fingerprint identity, not authentication
	"fmt"
	"strings"
)

// Transaction is a single candidate parsed from a bank statement. It is
// transient: the import engine merges it into the ledger and discards it.
type Transaction struct {
	Kind        EntryKind
	Description string
	Date        string // YYYY-MM-DD, may be empty when the statement omits it
	AccountName string
	Category    string
	ExternalID  string
	AccountID   int64
	Amount      float64
}

// normalizeDescription lowercases, trims and collapses whitespace runs so
// that cosmetic differences between statements do not change the fingerprint.
func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// Fingerprint derives a stable 40-hex-character identifier from the
// transaction's description, magnitude and date. Statements that carry no
// native identifier get deduplicated through this value, so it must be a
// pure function of its inputs.
func (t *Transaction) Fingerprint() string {
	base := fmt.Sprintf("%s|%.6f|%s", normalizeDescription(t.Description), t.Amount, t.Date)
	return fmt.Sprintf("%x", sha1.Sum([]byte(base))) //nolint:gosec
}

// EnsureExternalID fills in a fingerprint when the statement supplied no
// native identifier.
func (t *Transaction) EnsureExternalID() {
	if strings.TrimSpace(t.ExternalID) == "" {
		t.ExternalID = t.Fingerprint()
	}
}
