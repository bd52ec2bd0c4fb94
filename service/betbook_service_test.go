package service

import (
	"context"
	"testing"

	"goldhouse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBetBookService_CreateBet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, mockBetRepo, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	account := &models.Account{Username: "creator", Balance: 100}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUsername", ctx, "creator").Return(account, nil)
	mockAccountRepo.On("AdjustBalance", ctx, "creator", int64(-30)).Return(int64(70), nil)

	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *models.PeerBet) bool {
		return b.Creator == "creator" && b.Amount == 30 && b.Active && b.ID != ""
	})).Return(nil)

	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Username == "creator" &&
			tr.Type == models.TransactionTypeBetCreated &&
			tr.Amount == -30 &&
			tr.BalanceBefore == 100 &&
			tr.BalanceAfter == 70
	})).Return(nil)

	bet, err := service.CreateBet(ctx, "creator", 30)

	assert.NoError(t, err)
	assert.NotNil(t, bet)
	assert.Equal(t, "creator", bet.Creator)
	assert.Equal(t, int64(30), bet.Amount)
	assert.True(t, bet.Active)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestBetBookService_CreateBet_StakeBelowMinimum(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	bet, err := service.CreateBet(ctx, "creator", 5)

	assert.ErrorIs(t, err, ErrInvalidStake)
	assert.Nil(t, bet)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBetBookService_CreateBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	account := &models.Account{Username: "broke", Balance: 20}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUsername", ctx, "broke").Return(account, nil)

	bet, err := service.CreateBet(ctx, "broke", 30)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, bet)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance")
}

func TestBetBookService_AcceptBet_CreatorWins(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, mockBetRepo, nil)

	// Draw of 0.25 * pot lands in the creator's half
	rng := &scriptedRand{draws: []float64{0.25}}
	service := NewBetBookService(mockFactory, rng, testGameConfig())

	bet := &models.PeerBet{ID: "bet-1", Creator: "creator", Amount: 30, Active: true}
	// Creator's stake is already escrowed, acceptor has not paid yet
	creatorAccount := &models.Account{Username: "creator", Balance: 70}
	acceptorAccount := &models.Account{Username: "acceptor", Balance: 50}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, "bet-1").Return(bet, nil)
	mockAccountRepo.On("GetByUsername", ctx, "acceptor").Return(acceptorAccount, nil)
	mockAccountRepo.On("GetByUsername", ctx, "creator").Return(creatorAccount, nil)
	mockBetRepo.On("Claim", ctx, "bet-1", "acceptor").Return(true, nil)
	mockBetRepo.On("SetOutcome", ctx, "bet-1", true).Return(nil)

	mockAccountRepo.On("AdjustBalance", ctx, "acceptor", int64(-30)).Return(int64(20), nil)
	mockAccountRepo.On("AdjustBalance", ctx, "creator", int64(60)).Return(int64(130), nil)

	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Username == "creator" &&
			tr.Type == models.TransactionTypeBetWon &&
			tr.Amount == 30 &&
			tr.BalanceBefore == 70 &&
			tr.BalanceAfter == 130
	})).Return(nil)
	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Username == "acceptor" &&
			tr.Type == models.TransactionTypeBetLost &&
			tr.Amount == -30 &&
			tr.BalanceBefore == 50 &&
			tr.BalanceAfter == 20
	})).Return(nil)

	result, err := service.AcceptBet(ctx, "bet-1", "acceptor")

	assert.NoError(t, err)
	assert.Equal(t, "creator", result.Winner)
	assert.Equal(t, "acceptor", result.Loser)
	assert.Equal(t, int64(60), result.Pot)
	assert.False(t, result.AcceptorWon)
	assert.Equal(t, int64(20), result.NewBalance)

	mockBetRepo.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestBetBookService_AcceptBet_AcceptorWins(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, mockBetRepo, nil)

	// Draw of 0.75 * pot lands in the acceptor's half
	rng := &scriptedRand{draws: []float64{0.75}}
	service := NewBetBookService(mockFactory, rng, testGameConfig())

	bet := &models.PeerBet{ID: "bet-1", Creator: "creator", Amount: 30, Active: true}
	creatorAccount := &models.Account{Username: "creator", Balance: 70}
	acceptorAccount := &models.Account{Username: "acceptor", Balance: 50}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, "bet-1").Return(bet, nil)
	mockAccountRepo.On("GetByUsername", ctx, "acceptor").Return(acceptorAccount, nil)
	mockAccountRepo.On("GetByUsername", ctx, "creator").Return(creatorAccount, nil)
	mockBetRepo.On("Claim", ctx, "bet-1", "acceptor").Return(true, nil)
	mockBetRepo.On("SetOutcome", ctx, "bet-1", false).Return(nil)

	mockAccountRepo.On("AdjustBalance", ctx, "acceptor", int64(-30)).Return(int64(20), nil)
	mockAccountRepo.On("AdjustBalance", ctx, "acceptor", int64(60)).Return(int64(80), nil)

	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Username == "acceptor" &&
			tr.Type == models.TransactionTypeBetWon &&
			tr.Amount == 30 &&
			tr.BalanceBefore == 50 &&
			tr.BalanceAfter == 80
	})).Return(nil)
	// The creator's stake left at creation time; the loss entry records no
	// further movement
	mockTransactionRepo.On("Record", ctx, mock.MatchedBy(func(tr *models.Transaction) bool {
		return tr.Username == "creator" &&
			tr.Type == models.TransactionTypeBetLost &&
			tr.Amount == -30 &&
			tr.BalanceBefore == 70 &&
			tr.BalanceAfter == 70
	})).Return(nil)

	result, err := service.AcceptBet(ctx, "bet-1", "acceptor")

	assert.NoError(t, err)
	assert.Equal(t, "acceptor", result.Winner)
	assert.Equal(t, "creator", result.Loser)
	assert.Equal(t, int64(60), result.Pot)
	assert.True(t, result.AcceptorWon)
	assert.Equal(t, int64(80), result.NewBalance)

	mockBetRepo.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestBetBookService_AcceptBet_SelfMatch(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(nil, nil, mockBetRepo, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	bet := &models.PeerBet{ID: "bet-1", Creator: "creator", Amount: 30, Active: true}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, "bet-1").Return(bet, nil)

	result, err := service.AcceptBet(ctx, "bet-1", "creator")

	assert.ErrorIs(t, err, ErrSelfMatch)
	assert.Nil(t, result)
	mockBetRepo.AssertNotCalled(t, "Claim")
}

func TestBetBookService_AcceptBet_AlreadyMatched(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(nil, nil, mockBetRepo, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	acceptor := "rival"
	matched := &models.PeerBet{ID: "bet-1", Creator: "creator", Amount: 30, Acceptor: &acceptor}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, "bet-1").Return(matched, nil)

	result, err := service.AcceptBet(ctx, "bet-1", "acceptor")

	assert.ErrorIs(t, err, ErrBetAlreadyMatched)
	assert.Nil(t, result)
}

func TestBetBookService_AcceptBet_UnknownBet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(nil, nil, mockBetRepo, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, "missing").Return(nil, nil)

	result, err := service.AcceptBet(ctx, "missing", "acceptor")

	assert.ErrorIs(t, err, ErrBetAlreadyMatched)
	assert.Nil(t, result)
}

func TestBetBookService_AcceptBet_ClaimLost(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, mockBetRepo, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	bet := &models.PeerBet{ID: "bet-1", Creator: "creator", Amount: 30, Active: true}
	creatorAccount := &models.Account{Username: "creator", Balance: 70}
	acceptorAccount := &models.Account{Username: "acceptor", Balance: 50}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, "bet-1").Return(bet, nil)
	mockAccountRepo.On("GetByUsername", ctx, "acceptor").Return(acceptorAccount, nil)
	mockAccountRepo.On("GetByUsername", ctx, "creator").Return(creatorAccount, nil)

	// A concurrent acceptor claimed the bet first
	mockBetRepo.On("Claim", ctx, "bet-1", "acceptor").Return(false, nil)

	result, err := service.AcceptBet(ctx, "bet-1", "acceptor")

	assert.ErrorIs(t, err, ErrBetAlreadyMatched)
	assert.Nil(t, result)
	mockAccountRepo.AssertNotCalled(t, "AdjustBalance")
}

func TestBetBookService_ListOpenBets(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBetRepo := new(MockBetRepository)

	mockUoW.SetRepositories(nil, nil, mockBetRepo, nil)

	service := NewBetBookService(mockFactory, &scriptedRand{}, testGameConfig())

	open := []*models.PeerBet{
		{ID: "bet-1", Creator: "alice", Amount: 10, Active: true},
		{ID: "bet-2", Creator: "bob", Amount: 20, Active: true},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetOpen", ctx).Return(open, nil)

	bets, err := service.ListOpenBets(ctx)

	assert.NoError(t, err)
	assert.Equal(t, open, bets)
}
