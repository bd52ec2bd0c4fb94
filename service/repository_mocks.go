package service

import (
	"context"

	"goldhouse/events"
	"goldhouse/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, username string, delta int64) (int64, error) {
	args := m.Called(ctx, username, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalanceClamped(ctx context.Context, username string, delta int64) (int64, int64, error) {
	args := m.Called(ctx, username, delta)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) SetBanned(ctx context.Context, username string, banned bool) error {
	args := m.Called(ctx, username, banned)
	return args.Error(0)
}

func (m *MockAccountRepository) SetLuckyMode(ctx context.Context, username string, lucky bool) error {
	args := m.Called(ctx, username, lucky)
	return args.Error(0)
}

func (m *MockAccountRepository) CountByIP(ctx context.Context, ip string) (int64, error) {
	args := m.Called(ctx, ip)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) Search(ctx context.Context, query string, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, username string, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.PeerBet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id string) (*models.PeerBet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PeerBet), args.Error(1)
}

func (m *MockBetRepository) GetOpen(ctx context.Context) ([]*models.PeerBet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PeerBet), args.Error(1)
}

func (m *MockBetRepository) Claim(ctx context.Context, id string, acceptor string) (bool, error) {
	args := m.Called(ctx, id, acceptor)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) SetOutcome(ctx context.Context, id string, creatorWon bool) error {
	args := m.Called(ctx, id, creatorWon)
	return args.Error(0)
}

// MockPromoRepository is a mock implementation of PromoRepository
type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) Create(ctx context.Context, code *models.PromoCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockPromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromoCode), args.Error(1)
}

func (m *MockPromoRepository) HasActivation(ctx context.Context, username, code string) (bool, error) {
	args := m.Called(ctx, username, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromoRepository) RecordActivation(ctx context.Context, username, code string) error {
	args := m.Called(ctx, username, code)
	return args.Error(0)
}

func (m *MockPromoRepository) DecrementActivations(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events in tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// wired with SetRepositories so getters work without per-test expectations.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	betRepo         BetRepository
	promoRepo       PromoRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, transactions TransactionRepository, bets BetRepository, promos PromoRepository) {
	m.accountRepo = accounts
	m.transactionRepo = transactions
	m.betRepo = bets
	m.promoRepo = promos
	m.eventBus = noopPublisher{}
}

// SetEventBus overrides the event publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) PromoRepository() PromoRepository {
	return m.promoRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// scriptedRand returns predetermined draws and permutations, for deterministic
// outcome tests
type scriptedRand struct {
	draws []float64
	perms [][]int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.draws) == 0 {
		return 0
	}
	d := r.draws[0]
	r.draws = r.draws[1:]
	return d
}

func (r *scriptedRand) Perm(n int) []int {
	if len(r.perms) == 0 {
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		return perm
	}
	p := r.perms[0]
	r.perms = r.perms[1:]
	return p
}
