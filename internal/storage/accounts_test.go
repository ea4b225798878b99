package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

func TestCreateAndListAccounts(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	mustAccount(t, storage, "Nubank")
	mustAccount(t, storage, "Banco do Brasil")

	accounts, err := storage.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	// Ordered by name.
	assert.Equal(t, "Banco do Brasil", accounts[0].Name)
	assert.Equal(t, "Nubank", accounts[1].Name)
}

func TestCreateAccountDuplicateName(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	mustAccount(t, storage, "Nubank")
	_, err := storage.CreateAccount(ctx, "Nubank")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestCreateAccountTrimsName(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()

	acc, err := storage.CreateAccount(context.Background(), "  Itau  ")
	require.NoError(t, err)
	assert.Equal(t, "Itau", acc.Name)

	_, err = storage.CreateAccount(context.Background(), "   ")
	assert.Error(t, err)
}

func TestRenameAccount(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := mustAccount(t, storage, "Nubank")
	mustAccount(t, storage, "Itau")

	require.NoError(t, storage.RenameAccount(ctx, id, "Nubank PJ"))

	accounts, err := storage.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{accounts[0].Name, accounts[1].Name}, "Nubank PJ")

	// Renaming onto an existing name is a uniqueness conflict.
	assert.ErrorIs(t, storage.RenameAccount(ctx, id, "Itau"), common.ErrDuplicateEntry)
	// Unknown ID.
	assert.ErrorIs(t, storage.RenameAccount(ctx, 999, "Fantasma"), common.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := mustAccount(t, storage, "Vazia")
	require.NoError(t, storage.DeleteAccount(ctx, id))

	accounts, err := storage.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	assert.ErrorIs(t, storage.DeleteAccount(ctx, id), common.ErrNotFound)
}

func TestDeleteAccountWithEntriesIsRejected(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	id := mustAccount(t, storage, "Banco Usado")
	mustEntry(t, storage, model.Entry{
		Kind: model.KindPayable, Description: "Boleto", Amount: 10, Date: "2024-01-01", AccountID: id,
	})

	err := storage.DeleteAccount(ctx, id)
	assert.ErrorIs(t, err, common.ErrAccountInUse)

	// The account survives the refused delete.
	accounts, err := storage.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestAccountHasEntries(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	empty := mustAccount(t, storage, "Vazia")
	used := mustAccount(t, storage, "Usada")
	mustEntry(t, storage, model.Entry{
		Kind: model.KindReceivable, Description: "Freela", Amount: 100, Date: "2024-01-01", AccountID: used,
	})

	has, err := storage.AccountHasEntries(ctx, empty)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = storage.AccountHasEntries(ctx, used)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestResolveOrCreateAccount(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("known ID wins", func(t *testing.T) {
		id := mustAccount(t, storage, "Banco A")
		resolved, err := storage.ResolveOrCreateAccount(ctx, id, "ignorado")
		require.NoError(t, err)
		assert.Equal(t, id, resolved)
	})

	t.Run("unknown ID falls back to name", func(t *testing.T) {
		resolved, err := storage.ResolveOrCreateAccount(ctx, 999, "Banco B")
		require.NoError(t, err)

		again, err := storage.ResolveOrCreateAccount(ctx, 0, "Banco B")
		require.NoError(t, err)
		assert.Equal(t, resolved, again)
	})

	t.Run("no reference uses first account", func(t *testing.T) {
		resolved, err := storage.ResolveOrCreateAccount(ctx, 0, "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), resolved)
	})
}

func TestResolveOrCreateAccountEmptyDatabase(t *testing.T) {
	storage, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	resolved, err := storage.ResolveOrCreateAccount(ctx, 0, "")
	require.NoError(t, err)

	accounts, err := storage.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, DefaultAccountName, accounts[0].Name)
	assert.Equal(t, accounts[0].ID, resolved)
}
