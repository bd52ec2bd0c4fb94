package repository

import (
	"context"
	"testing"

	"goldhouse/repository/testutil"
	"goldhouse/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetByUsername(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("account not found", func(t *testing.T) {
		account, err := repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("account found", func(t *testing.T) {
		testAccount := testutil.CreateTestAccount("alice")
		err := repo.Create(ctx, testAccount)
		require.NoError(t, err)

		account, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, testAccount.Username, account.Username)
		assert.Equal(t, testAccount.PasswordHash, account.PasswordHash)
		assert.Equal(t, testAccount.Balance, account.Balance)
		assert.False(t, account.Banned)
		assert.False(t, account.LuckyMode)
		assert.False(t, account.CreatedAt.IsZero())
	})
}

func TestAccountRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		testAccount := testutil.CreateTestAccountWithBalance("bob", 10)

		err := repo.Create(ctx, testAccount)
		require.NoError(t, err)

		assert.False(t, testAccount.CreatedAt.IsZero())
		assert.False(t, testAccount.UpdatedAt.IsZero())
	})

	t.Run("duplicate username", func(t *testing.T) {
		first := testutil.CreateTestAccount("carol")
		require.NoError(t, repo.Create(ctx, first))

		dup := testutil.CreateTestAccount("carol")
		err := repo.Create(ctx, dup)
		assert.Error(t, err)
	})
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("credit and debit", func(t *testing.T) {
		account := testutil.CreateTestAccountWithBalance("dave", 100)
		require.NoError(t, repo.Create(ctx, account))

		balance, err := repo.AdjustBalance(ctx, "dave", 50)
		require.NoError(t, err)
		assert.Equal(t, int64(150), balance)

		balance, err = repo.AdjustBalance(ctx, "dave", -150)
		require.NoError(t, err)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		account := testutil.CreateTestAccountWithBalance("erin", 30)
		require.NoError(t, repo.Create(ctx, account))

		_, err := repo.AdjustBalance(ctx, "erin", -31)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		// Balance untouched after the failed debit
		fresh, err := repo.GetByUsername(ctx, "erin")
		require.NoError(t, err)
		assert.Equal(t, int64(30), fresh.Balance)
	})

	t.Run("account not found", func(t *testing.T) {
		_, err := repo.AdjustBalance(ctx, "ghost", -10)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestAccountRepository_AdjustBalanceClamped(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("debit floors at zero", func(t *testing.T) {
		account := testutil.CreateTestAccountWithBalance("fay", 40)
		require.NoError(t, repo.Create(ctx, account))

		before, after, err := repo.AdjustBalanceClamped(ctx, "fay", -100)
		require.NoError(t, err)
		assert.Equal(t, int64(40), before)
		assert.Equal(t, int64(0), after)

		fresh, err := repo.GetByUsername(ctx, "fay")
		require.NoError(t, err)
		assert.Equal(t, int64(0), fresh.Balance)
	})

	t.Run("credit", func(t *testing.T) {
		account := testutil.CreateTestAccountWithBalance("gil", 100)
		require.NoError(t, repo.Create(ctx, account))

		before, after, err := repo.AdjustBalanceClamped(ctx, "gil", 50)
		require.NoError(t, err)
		assert.Equal(t, int64(100), before)
		assert.Equal(t, int64(150), after)
	})

	t.Run("account not found", func(t *testing.T) {
		_, _, err := repo.AdjustBalanceClamped(ctx, "ghost", -10)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestAccountRepository_SetBanned(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("ban and unban", func(t *testing.T) {
		account := testutil.CreateTestAccount("frank")
		require.NoError(t, repo.Create(ctx, account))

		require.NoError(t, repo.SetBanned(ctx, "frank", true))

		fresh, err := repo.GetByUsername(ctx, "frank")
		require.NoError(t, err)
		assert.True(t, fresh.Banned)

		require.NoError(t, repo.SetBanned(ctx, "frank", false))

		fresh, err = repo.GetByUsername(ctx, "frank")
		require.NoError(t, err)
		assert.False(t, fresh.Banned)
	})

	t.Run("account not found", func(t *testing.T) {
		err := repo.SetBanned(ctx, "ghost", true)
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestAccountRepository_SetLuckyMode(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount("grace")
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.SetLuckyMode(ctx, "grace", true))

	fresh, err := repo.GetByUsername(ctx, "grace")
	require.NoError(t, err)
	assert.True(t, fresh.LuckyMode)
}

func TestAccountRepository_CountByIP(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	for _, name := range []string{"ip1", "ip2", "ip3"} {
		account := testutil.CreateTestAccount(name)
		account.IPAddress = "10.0.0.7"
		require.NoError(t, repo.Create(ctx, account))
	}

	other := testutil.CreateTestAccount("ip4")
	other.IPAddress = "10.0.0.8"
	require.NoError(t, repo.Create(ctx, other))

	count, err := repo.CountByIP(ctx, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountByIP(ctx, "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAccountRepository_Search(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	for _, name := range []string{"hunter", "hunter2", "gatherer"} {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestAccount(name)))
	}

	t.Run("prefix match", func(t *testing.T) {
		accounts, err := repo.Search(ctx, "hunt", 10)
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})

	t.Run("no match", func(t *testing.T) {
		accounts, err := repo.Search(ctx, "wizard", 10)
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})

	t.Run("limit respected", func(t *testing.T) {
		accounts, err := repo.Search(ctx, "", 2)
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})
}
