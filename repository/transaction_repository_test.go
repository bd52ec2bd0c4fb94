package repository

import (
	"context"
	"testing"

	"goldhouse/models"
	"goldhouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Record(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, accountRepo.Create(ctx, testutil.CreateTestAccount("alice")))

	entry := testutil.CreateTestTransaction("alice", models.TransactionTypeRouletteLoss)
	err := repo.Record(ctx, entry)
	require.NoError(t, err)

	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestTransactionRepository_GetByUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, accountRepo.Create(ctx, testutil.CreateTestAccount("bob")))
	require.NoError(t, accountRepo.Create(ctx, testutil.CreateTestAccount("carol")))

	t.Run("no history", func(t *testing.T) {
		entries, err := repo.GetByUser(ctx, "bob", 50)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("most recent first with limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			entry := &models.Transaction{
				Username:      "bob",
				Type:          models.TransactionTypeRouletteWin,
				Amount:        int64(i + 1),
				BalanceBefore: 100,
				BalanceAfter:  100 + int64(i+1),
				Metadata:      map[string]any{"seq": i},
			}
			require.NoError(t, repo.Record(ctx, entry))
		}

		entries, err := repo.GetByUser(ctx, "bob", 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		// Newest entry first
		assert.Equal(t, int64(5), entries[0].Amount)
		assert.Equal(t, int64(4), entries[1].Amount)
		assert.Equal(t, int64(3), entries[2].Amount)
	})

	t.Run("scoped to user", func(t *testing.T) {
		entry := testutil.CreateTestTransaction("carol", models.TransactionTypeSignupBonus)
		require.NoError(t, repo.Record(ctx, entry))

		entries, err := repo.GetByUser(ctx, "carol", 50)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "carol", entries[0].Username)
		assert.Equal(t, models.TransactionTypeSignupBonus, entries[0].Type)
	})

	t.Run("metadata round trip", func(t *testing.T) {
		entry := &models.Transaction{
			Username:      "carol",
			Type:          models.TransactionTypeRouletteBonus,
			Amount:        200,
			BalanceBefore: 100,
			BalanceAfter:  300,
			Metadata:      map[string]any{"wall": float64(2), "multiplier": float64(20)},
		}
		require.NoError(t, repo.Record(ctx, entry))

		entries, err := repo.GetByUser(ctx, "carol", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entry.Metadata, entries[0].Metadata)
	})
}
