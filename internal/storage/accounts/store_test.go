package accounts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinvest/server/internal/domain"
)

func TestStore_PutGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	account, err := domain.NewAccount("alice", "alice@example.com", "hash", decimal.NewFromInt(100000))
	require.NoError(t, err)
	require.NoError(t, store.Put(account))

	got, ok := store.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100000)))

	_, ok = store.Get("bob")
	assert.False(t, ok)
}

func TestStore_SurvivesReload(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	account, err := domain.NewAccount("alice", "alice@example.com", "hash", decimal.NewFromFloat(99875.25))
	require.NoError(t, err)
	require.NoError(t, store.Put(account))

	reloaded, err := NewStore(dir)
	require.NoError(t, err)

	got, ok := reloaded.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, got.Balance.Equal(decimal.NewFromFloat(99875.25)), "balance %s", got.Balance)
}
