package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"goldhouse/events"
	"goldhouse/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsChanges(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	account := testutil.CreateTestAccountWithBalance("alice", 100)
	require.NoError(t, uow.AccountRepository().Create(ctx, account))
	require.NoError(t, uow.Commit())

	// Visible outside the transaction after commit
	fresh, err := NewAccountRepository(testDB.DB).GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, int64(100), fresh.Balance)
}

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	account := testutil.CreateTestAccountWithBalance("bob", 100)
	require.NoError(t, uow.AccountRepository().Create(ctx, account))
	require.NoError(t, uow.Rollback())

	fresh, err := NewAccountRepository(testDB.DB).GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, fresh)
}

func TestUnitOfWork_EventsFlushOnlyAfterCommit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	bus := events.NewBus()

	delivered := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		delivered <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	// Rolled-back work never emits
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	uow.EventBus().Publish(events.BalanceChangeEvent{Username: "alice"})
	require.NoError(t, uow.Rollback())

	select {
	case <-delivered:
		t.Fatal("event delivered despite rollback")
	case <-time.After(50 * time.Millisecond):
	}

	// Committed work emits
	uow = factory.Create()
	require.NoError(t, uow.Begin(ctx))
	uow.EventBus().Publish(events.BalanceChangeEvent{Username: "alice"})
	require.NoError(t, uow.Commit())

	select {
	case e := <-delivered:
		change, ok := e.(events.BalanceChangeEvent)
		require.True(t, ok)
		assert.Equal(t, "alice", change.Username)
	case <-time.After(time.Second):
		t.Fatal("event not delivered after commit")
	}
}

func TestUnitOfWork_GetterPanicsBeforeBegin(t *testing.T) {
	t.Parallel()

	factory := NewUnitOfWorkFactory(nil, events.NewBus())
	uow := factory.Create()

	assert.Panics(t, func() {
		uow.AccountRepository()
	})
}

func TestUnitOfWork_DoubleBegin(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}

func TestDB_WithTransaction(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			return newAccountRepositoryWithTx(tx).Create(ctx, testutil.CreateTestAccount("carol"))
		})
		require.NoError(t, err)

		fresh, err := NewAccountRepository(testDB.DB).GetByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.NotNil(t, fresh)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			if err := newAccountRepositoryWithTx(tx).Create(ctx, testutil.CreateTestAccount("dave")); err != nil {
				return err
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		fresh, err := NewAccountRepository(testDB.DB).GetByUsername(ctx, "dave")
		require.NoError(t, err)
		assert.Nil(t, fresh)
	})
}
