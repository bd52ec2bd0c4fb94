package repository

import (
	"context"
	"testing"

	"goldhouse/models"
	"goldhouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPromoRepository(testDB.DB)
	ctx := context.Background()

	t.Run("code not found", func(t *testing.T) {
		promo, err := repo.GetByCode(ctx, "MISSING")
		require.NoError(t, err)
		assert.Nil(t, promo)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		code := testutil.CreateTestPromoCode("WELCOME50")
		require.NoError(t, repo.Create(ctx, code))
		assert.False(t, code.CreatedAt.IsZero())

		promo, err := repo.GetByCode(ctx, "WELCOME50")
		require.NoError(t, err)
		require.NotNil(t, promo)

		assert.Equal(t, models.PromoKindBalance, promo.Kind)
		assert.Equal(t, int64(50), promo.Amount)
		assert.Equal(t, int64(10), promo.ActivationsLeft)
	})

	t.Run("duplicate code", func(t *testing.T) {
		first := testutil.CreateTestPromoCode("DUPE")
		require.NoError(t, repo.Create(ctx, first))

		err := repo.Create(ctx, testutil.CreateTestPromoCode("DUPE"))
		assert.Error(t, err)
	})
}

func TestPromoRepository_DecrementActivations(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPromoRepository(testDB.DB)
	ctx := context.Background()

	code := testutil.CreateTestPromoCode("LIMITED")
	code.ActivationsLeft = 2
	require.NoError(t, repo.Create(ctx, code))

	ok, err := repo.DecrementActivations(ctx, "LIMITED")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementActivations(ctx, "LIMITED")
	require.NoError(t, err)
	assert.True(t, ok)

	// Exhausted
	ok, err = repo.DecrementActivations(ctx, "LIMITED")
	require.NoError(t, err)
	assert.False(t, ok)

	promo, err := repo.GetByCode(ctx, "LIMITED")
	require.NoError(t, err)
	require.NotNil(t, promo)
	assert.Equal(t, int64(0), promo.ActivationsLeft)
}

func TestPromoRepository_Activations(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewPromoRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, accountRepo.Create(ctx, testutil.CreateTestAccount("alice")))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestPromoCode("ONCE")))

	used, err := repo.HasActivation(ctx, "alice", "ONCE")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, repo.RecordActivation(ctx, "alice", "ONCE"))

	used, err = repo.HasActivation(ctx, "alice", "ONCE")
	require.NoError(t, err)
	assert.True(t, used)

	// Second activation by the same account violates the primary key
	err = repo.RecordActivation(ctx, "alice", "ONCE")
	assert.Error(t, err)
}
