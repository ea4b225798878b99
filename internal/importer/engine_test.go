package importer

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbgleisson/contas-a-pagar/internal/model"
	"github.com/rbgleisson/contas-a-pagar/internal/service"
	"github.com/rbgleisson/contas-a-pagar/internal/testutil"
)

func sampleTransactions(accountID int64) []model.Transaction {
	return []model.Transaction{
		{
			Kind:        model.KindPayable,
			Description: "Pagamento boleto",
			Amount:      100.00,
			Date:        "2024-01-15",
			AccountID:   accountID,
			ExternalID:  "TX001",
		},
		{
			Kind:        model.KindPayable,
			Description: "Supermercado",
			Amount:      55.30,
			Date:        "2024-01-16",
			AccountID:   accountID,
		},
		{
			Kind:        model.KindReceivable,
			Description: "Reembolso",
			Amount:      120.00,
			Date:        "2024-01-20",
			AccountID:   accountID,
			ExternalID:  "TX002",
		},
	}
}

func TestImportInsertsCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	result, err := NewEngine(db.Store).Import(ctx, sampleTransactions(accountID))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Zero(t, result.Duplicates)
	assert.Zero(t, result.Failed)

	payables, err := db.Store.ListEntries(ctx, model.KindPayable)
	require.NoError(t, err)
	require.Len(t, payables, 2)
	assert.Equal(t, "Pagamento boleto", payables[0].Description)
	assert.InDelta(t, 100.00, payables[0].Amount, 1e-9)
	assert.False(t, payables[0].Settled)

	receivables, err := db.Store.ListEntries(ctx, model.KindReceivable)
	require.NoError(t, err)
	require.Len(t, receivables, 1)
	assert.Equal(t, "Reembolso", receivables[0].Description)
}

func TestImportIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()
	engine := NewEngine(db.Store)

	first, err := engine.Import(ctx, sampleTransactions(accountID))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)

	second, err := engine.Import(ctx, sampleTransactions(accountID))
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 3, second.Duplicates)
	assert.Zero(t, second.Failed)

	payables, err := db.Store.ListEntries(ctx, model.KindPayable)
	require.NoError(t, err)
	assert.Len(t, payables, 2)
}

func TestImportFingerprintsIdentifierlessCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	txns := []model.Transaction{{
		Kind:        model.KindPayable,
		Description: "Supermercado",
		Amount:      55.30,
		Date:        "2024-01-16",
		AccountID:   accountID,
	}}

	result, err := NewEngine(db.Store).Import(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	entries, err := db.Store.ListEntries(ctx, model.KindPayable)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{40}$`), entries[0].ExternalID)
}

func TestImportCollapsesIdenticalCandidates(t *testing.T) {
	// Identical identifierless candidates collapse into one entry because
	// they fingerprint to the same external identifier.
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	txn := model.Transaction{
		Kind:        model.KindPayable,
		Description: "Assinatura mensal",
		Amount:      29.90,
		Date:        "2024-02-01",
		AccountID:   accountID,
	}

	result, err := NewEngine(db.Store).Import(ctx, []model.Transaction{txn, txn})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
}

func TestImportNaturalKeyMatchesManualEntry(t *testing.T) {
	// An entry typed in by hand carries no external identifier, so an
	// identifierless statement candidate can only match it by natural key.
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	manual := model.Entry{
		Kind:        model.KindPayable,
		Description: "Aluguel",
		Amount:      1200.00,
		Date:        "2024-02-05",
		AccountID:   accountID,
	}
	_, err := db.Store.AddEntry(ctx, &manual)
	require.NoError(t, err)

	txns := []model.Transaction{{
		Kind:        model.KindPayable,
		Description: "Aluguel",
		Amount:      1200.00,
		Date:        "2024-02-05",
		AccountID:   accountID,
	}}

	result, err := NewEngine(db.Store).Import(ctx, txns)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
}

func TestImportSkipsInvalidCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	txns := []model.Transaction{
		{
			Kind:        "transferencia",
			Description: "tipo desconhecido",
			Amount:      10.00,
			Date:        "2024-01-01",
			AccountID:   accountID,
		},
		{
			Kind:        model.KindPayable,
			Description: "valida",
			Amount:      10.00,
			Date:        "2024-01-02",
			AccountID:   accountID,
			ExternalID:  "TX100",
		},
	}

	result, err := NewEngine(db.Store).Import(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)

	entries, err := db.Store.ListEntries(ctx, model.KindPayable)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestImportResolvesMissingAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	txns := []model.Transaction{{
		Kind:        model.KindPayable,
		Description: "Sem conta cadastrada",
		Amount:      15.00,
		Date:        "2024-03-01",
		AccountName: "Banco Novo",
		ExternalID:  "TX200",
	}}

	result, err := NewEngine(db.Store).Import(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	accounts, err := db.Store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Banco Novo", accounts[0].Name)
}

func TestImportRegistersCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	txns := []model.Transaction{{
		Kind:        model.KindPayable,
		Description: "Mensalidade",
		Amount:      80.00,
		Date:        "2024-04-01",
		AccountID:   accountID,
		Category:    "Educação",
		ExternalID:  "TX300",
	}}

	_, err := NewEngine(db.Store).Import(ctx, txns)
	require.NoError(t, err)

	categories, err := db.Store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Educação", categories[0].Name)
}

func TestImportReportsProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	var calls []int
	engine := NewEngine(db.Store).WithProgress(func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})

	_, err := engine.Import(ctx, sampleTransactions(accountID))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
}

// blindStore hides existing external identifiers so the insert itself hits
// the unique index, exercising the constraint fallback path.
type blindStore struct {
	service.LedgerStore
}

func (s *blindStore) ExistsByExternalID(context.Context, model.EntryKind, int64, string) (bool, error) {
	return false, nil
}

func TestImportTreatsUniqueViolationAsDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	accountID := db.MustCreateAccount("Banco Teste")
	ctx := context.Background()

	txn := model.Transaction{
		Kind:        model.KindPayable,
		Description: "Pagamento boleto",
		Amount:      100.00,
		Date:        "2024-01-15",
		AccountID:   accountID,
		ExternalID:  "TX001",
	}

	engine := NewEngine(&blindStore{LedgerStore: db.Store})
	result, err := engine.Import(ctx, []model.Transaction{txn, txn})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Zero(t, result.Failed)
}
