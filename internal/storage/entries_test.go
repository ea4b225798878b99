package storage

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

func TestInsertAndGetEntry(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	id := mustEntry(t, storage, model.Entry{
		Kind:        model.KindPayable,
		Description: "Conta de luz",
		Amount:      189.45,
		Date:        "2024-01-10",
		AccountID:   accountID,
		Category:    "Moradia",
		ExternalID:  "TX001",
	})

	entry, err := storage.GetEntry(ctx, model.KindPayable, id)
	require.NoError(t, err)
	assert.Equal(t, "Conta de luz", entry.Description)
	assert.InDelta(t, 189.45, entry.Amount, 1e-9)
	assert.Equal(t, "2024-01-10", entry.Date)
	assert.Equal(t, accountID, entry.AccountID)
	assert.Equal(t, "Banco Teste", entry.AccountName)
	assert.Equal(t, "Moradia", entry.Category)
	assert.Equal(t, "TX001", entry.ExternalID)
	assert.False(t, entry.Settled)
}

func TestGetEntryNotFound(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := storage.GetEntry(context.Background(), model.KindPayable, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInsertEntryRejectsInvalidAmounts(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	accountID := mustAccount(t, storage, "Banco Teste")

	tests := []struct {
		name   string
		amount float64
	}{
		{name: "negative", amount: -10.00},
		{name: "NaN", amount: math.NaN()},
		{name: "infinite", amount: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := model.Entry{
				Kind:        model.KindPayable,
				Description: "invalida",
				Amount:      tt.amount,
				Date:        "2024-01-01",
				AccountID:   accountID,
			}
			_, err := storage.InsertEntry(context.Background(), &entry)
			assert.Error(t, err)
		})
	}
}

func TestLedgersAreIndependent(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "Boleto", Amount: 10, Date: "2024-01-01",
		AccountID: accountID, ExternalID: "SHARED",
	})
	// The same external identifier is fine in the other ledger.
	mustEntry(t, storage, model.Entry{
		Kind: model.KindReceivable, Description: "Reembolso", Amount: 10, Date: "2024-01-01",
		AccountID: accountID, ExternalID: "SHARED",
	})

	payables, err := storage.ListEntries(ctx, model.KindPayable)
	require.NoError(t, err)
	receivables, err := storage.ListEntries(ctx, model.KindReceivable)
	require.NoError(t, err)
	assert.Len(t, payables, 1)
	assert.Len(t, receivables, 1)
}

func TestInsertEntryDuplicateExternalID(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	accountID := mustAccount(t, storage, "Banco Teste")

	entry := model.Entry{
		Kind: model.KindPayable, Description: "Boleto", Amount: 10, Date: "2024-01-01",
		AccountID: accountID, ExternalID: "TX001",
	}
	mustEntry(t, storage, entry)

	_, err := storage.InsertEntry(context.Background(), &entry)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestInsertEntryEmptyExternalIDNeverCollides(t *testing.T) {
	// Manual entries carry no identifier and must never trip the dedup
	// index, no matter how many exist per account.
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	accountID := mustAccount(t, storage, "Banco Teste")

	for i := 0; i < 3; i++ {
		mustEntry(t, storage, model.Entry{
			Kind: model.KindPayable, Description: "Manual", Amount: 5, Date: "2024-01-01",
			AccountID: accountID,
		})
	}

	entries, err := storage.ListEntries(context.Background(), model.KindPayable)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestExistsByExternalID(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")
	otherID := mustAccount(t, storage, "Outro Banco")

	mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "Boleto", Amount: 10, Date: "2024-01-01",
		AccountID: accountID, ExternalID: "TX001",
	})

	exists, err := storage.ExistsByExternalID(ctx, model.KindPayable, accountID, "TX001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = storage.ExistsByExternalID(ctx, model.KindPayable, accountID, "TX999")
	require.NoError(t, err)
	assert.False(t, exists)

	// Scoped per account.
	exists, err = storage.ExistsByExternalID(ctx, model.KindPayable, otherID, "TX001")
	require.NoError(t, err)
	assert.False(t, exists)

	// Scoped per ledger.
	exists, err = storage.ExistsByExternalID(ctx, model.KindReceivable, accountID, "TX001")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsByNaturalKey(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "Supermercado", Amount: 55.30, Date: "2024-01-16",
		AccountID: accountID,
	})

	exists, err := storage.ExistsByNaturalKey(ctx, model.KindPayable, "Supermercado", 55.30, "2024-01-16", accountID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Amounts within float tolerance still match.
	exists, err = storage.ExistsByNaturalKey(ctx, model.KindPayable, "Supermercado", 55.3000001, "2024-01-16", accountID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = storage.ExistsByNaturalKey(ctx, model.KindPayable, "Supermercado", 55.31, "2024-01-16", accountID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = storage.ExistsByNaturalKey(ctx, model.KindPayable, "Supermercado", 55.30, "2024-01-17", accountID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddEntryNormalizesDateAndRegistersCategory(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	entry := model.Entry{
		Kind:        model.KindPayable,
		Description: "Aluguel",
		Amount:      1200.00,
		Date:        "10/01/2024",
		AccountID:   accountID,
		Category:    "Moradia",
	}
	id, err := storage.AddEntry(ctx, &entry)
	require.NoError(t, err)

	saved, err := storage.GetEntry(ctx, model.KindPayable, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", saved.Date)

	categories, err := storage.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Moradia", categories[0].Name)
}

func TestListEntriesOrderedByDate(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	accountID := mustAccount(t, storage, "Banco Teste")

	mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "depois", Amount: 1, Date: "2024-03-01", AccountID: accountID,
	})
	mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "antes", Amount: 1, Date: "2024-01-01", AccountID: accountID,
	})

	entries, err := storage.ListEntries(context.Background(), model.KindPayable)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "antes", entries[0].Description)
	assert.Equal(t, "depois", entries[1].Description)
}

func TestUpdateEntry(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	id := mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "Internet", Amount: 99.90, Date: "2024-01-05",
		AccountID: accountID, ExternalID: "TX010",
	})
	require.NoError(t, storage.SetSettled(ctx, model.KindPayable, id, true))

	err := storage.UpdateEntry(ctx, &model.Entry{
		ID:          id,
		Kind:        model.KindPayable,
		Description: "Internet fibra",
		Amount:      119.90,
		Date:        "2024-01-06",
		AccountID:   accountID,
		Category:    "Servicos",
	})
	require.NoError(t, err)

	saved, err := storage.GetEntry(ctx, model.KindPayable, id)
	require.NoError(t, err)
	assert.Equal(t, "Internet fibra", saved.Description)
	assert.InDelta(t, 119.90, saved.Amount, 1e-9)
	assert.Equal(t, "2024-01-06", saved.Date)
	assert.Equal(t, "Servicos", saved.Category)
	// Settled flag and external identifier survive the update untouched.
	assert.True(t, saved.Settled)
	assert.Equal(t, "TX010", saved.ExternalID)
}

func TestUpdateEntryNotFound(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	accountID := mustAccount(t, storage, "Banco Teste")

	err := storage.UpdateEntry(context.Background(), &model.Entry{
		ID: 999, Kind: model.KindPayable, Description: "fantasma", Amount: 1,
		Date: "2024-01-01", AccountID: accountID,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSetSettled(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	id := mustEntry(t, storage, model.Entry{
		Kind: model.KindReceivable, Description: "Freela", Amount: 500, Date: "2024-02-01",
		AccountID: accountID,
	})

	require.NoError(t, storage.SetSettled(ctx, model.KindReceivable, id, true))
	saved, err := storage.GetEntry(ctx, model.KindReceivable, id)
	require.NoError(t, err)
	assert.True(t, saved.Settled)

	require.NoError(t, storage.SetSettled(ctx, model.KindReceivable, id, false))
	saved, err = storage.GetEntry(ctx, model.KindReceivable, id)
	require.NoError(t, err)
	assert.False(t, saved.Settled)

	assert.ErrorIs(t, storage.SetSettled(ctx, model.KindReceivable, 999, true), common.ErrNotFound)
}

func TestDeleteEntry(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	accountID := mustAccount(t, storage, "Banco Teste")

	id := mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "temporaria", Amount: 10, Date: "2024-01-01",
		AccountID: accountID,
	})

	require.NoError(t, storage.DeleteEntry(ctx, model.KindPayable, id))
	_, err := storage.GetEntry(ctx, model.KindPayable, id)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, storage.DeleteEntry(ctx, model.KindPayable, id), common.ErrNotFound)
}
