// Package ofx parses bank statement files into candidate ledger transactions.
//
// The parser is deliberately lenient: real statements arrive with broken
// encodings, missing dates and malformed blocks, and a single bad block must
// never sink the import. Blocks are scanned with tag-level regular
// expressions rather than a strict SGML parser for exactly that reason.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

// DefaultDescription is used when a transaction block carries no memo.
const DefaultDescription = "Transação"

var (
	blockRegex    = regexp.MustCompile(`(?is)<STMTTRN>(.*?)</STMTTRN>`)
	amountRegex   = regexp.MustCompile(`(?i)<TRNAMT>([-+]?\d+[.,]?\d*)`)
	dtPostedRegex = regexp.MustCompile(`(?i)<DTPOSTED>(\d{8})`)
	memoRegex     = regexp.MustCompile(`(?is)<MEMO>(.*?)\s*(?:<|$)`)
	fitIDRegex    = regexp.MustCompile(`(?is)<FITID>(.*?)\s*(?:<|$)`)
)

// ParseResult holds the transactions extracted from one statement file.
type ParseResult struct {
	Transactions []model.Transaction
	// Skipped counts blocks dropped for lacking a usable amount. Diagnostic
	// only; skipped blocks are not an error.
	Skipped int
}

// Parser implements statement file parsing.
type Parser struct{}

// NewParser creates a new statement parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a statement file. A missing or unreadable file
// aborts the whole parse; everything past that point is best-effort.
func (p *Parser) ParseFile(ctx context.Context, path string, accountID int64, accountName string) (ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %s: %v", common.ErrStatementUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(ctx, f, accountID, accountName)
}

// Parse extracts transaction candidates from raw statement text. Parsing is
// pure: the same input always yields the same transactions in the same order.
func (p *Parser) Parse(_ context.Context, reader io.Reader, accountID int64, accountName string) (ParseResult, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read statement: %w", err)
	}

	content := sanitize(raw)

	var result ParseResult
	for _, m := range blockRegex.FindAllStringSubmatch(content, -1) {
		block := m[1]

		amtMatch := amountRegex.FindStringSubmatch(block)
		if amtMatch == nil {
			result.Skipped++
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(amtMatch[1]), ",", "."), 64)
		if err != nil {
			result.Skipped++
			continue
		}

		date := ""
		if dtMatch := dtPostedRegex.FindStringSubmatch(block); dtMatch != nil {
			date = postingDate(dtMatch[1])
		}

		description := DefaultDescription
		if memoMatch := memoRegex.FindStringSubmatch(block); memoMatch != nil {
			if memo := strings.TrimSpace(memoMatch[1]); memo != "" {
				description = memo
			}
		}

		externalID := ""
		if fitMatch := fitIDRegex.FindStringSubmatch(block); fitMatch != nil {
			externalID = strings.TrimSpace(fitMatch[1])
		}

		kind := model.KindPayable
		if amount > 0 {
			kind = model.KindReceivable
		}
		if amount < 0 {
			amount = -amount
		}

		result.Transactions = append(result.Transactions, model.Transaction{
			Kind:        kind,
			Description: description,
			Amount:      amount,
			Date:        date,
			AccountID:   accountID,
			AccountName: accountName,
			Category:    "",
			ExternalID:  externalID,
		})
	}

	slog.Debug("parsed statement",
		"transactions", len(result.Transactions),
		"skipped_blocks", result.Skipped)

	return result, nil
}

// postingDate converts an 8-digit YYYYMMDD posting date to ISO form. Values
// that do not parse are passed through so the caller still sees something.
func postingDate(raw string) string {
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

// sanitize drops invalid UTF-8 bytes so a statement with a broken encoding
// still parses instead of failing the read.
func sanitize(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "")
}
