package service

import (
	"context"

	"goldhouse/events"
	"goldhouse/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByUsername retrieves an account by username, nil if not found
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Create inserts a new account record
	Create(ctx context.Context, account *models.Account) error

	// AdjustBalance applies a signed delta to an account's balance atomically,
	// failing with ErrInsufficientFunds if the result would be negative.
	// Returns the new balance.
	AdjustBalance(ctx context.Context, username string, delta int64) (int64, error)

	// AdjustBalanceClamped applies a signed delta, clamping the result at
	// zero instead of failing. Returns the balance before and after the
	// adjustment.
	AdjustBalanceClamped(ctx context.Context, username string, delta int64) (int64, int64, error)

	// SetBanned updates the banned flag
	SetBanned(ctx context.Context, username string, banned bool) error

	// SetLuckyMode updates the lucky-mode flag
	SetLuckyMode(ctx context.Context, username string, lucky bool) error

	// CountByIP returns how many accounts were registered from an address
	CountByIP(ctx context.Context, ip string) (int64, error)

	// Search returns accounts whose username contains the query, newest first
	Search(ctx context.Context, query string, limit int) ([]*models.Account, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Record appends a new ledger entry
	Record(ctx context.Context, transaction *models.Transaction) error

	// GetByUser returns ledger entries for an account, most recent first
	GetByUser(ctx context.Context, username string, limit int) ([]*models.Transaction, error)
}

// BetRepository defines the interface for peer bet data access
type BetRepository interface {
	// Create inserts a new open bet
	Create(ctx context.Context, bet *models.PeerBet) error

	// GetByID retrieves a bet by its ID, nil if not found
	GetByID(ctx context.Context, id string) (*models.PeerBet, error)

	// GetOpen returns all open bets, newest first
	GetOpen(ctx context.Context) ([]*models.PeerBet, error)

	// Claim atomically takes a bet off the open list for the given acceptor.
	// Returns false if the bet was already matched or does not exist.
	Claim(ctx context.Context, id string, acceptor string) (bool, error)

	// SetOutcome records which side won a claimed bet
	SetOutcome(ctx context.Context, id string, creatorWon bool) error
}

// PromoRepository defines the interface for promo code data access
type PromoRepository interface {
	// Create inserts a new promo code
	Create(ctx context.Context, code *models.PromoCode) error

	// GetByCode retrieves a promo code, nil if not found
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)

	// HasActivation checks whether an account already redeemed a code
	HasActivation(ctx context.Context, username, code string) (bool, error)

	// RecordActivation marks a code as redeemed by an account
	RecordActivation(ctx context.Context, username, code string) error

	// DecrementActivations consumes one activation, returning false when the
	// code has none left
	DecrementActivations(ctx context.Context, code string) (bool, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// Register creates a new account with the signup bonus
	Register(ctx context.Context, username, password, ip string) (*models.Account, error)

	// Login verifies credentials and returns the account with a signed token
	Login(ctx context.Context, username, password string) (*models.Account, string, error)

	// ListTransactions returns the account's ledger, most recent first
	ListTransactions(ctx context.Context, username string) ([]*models.Transaction, error)

	// CheckWithdrawal reports whether the balance passes the withdrawal
	// threshold; actual money movement is handled outside the system
	CheckWithdrawal(ctx context.Context, username string) (*WithdrawalStatus, error)

	// ListAccounts returns accounts matching the search query, for the admin
	// panel
	ListAccounts(ctx context.Context, search string) ([]*models.Account, error)
}

// WithdrawalStatus reports withdrawal eligibility for an account
type WithdrawalStatus struct {
	Eligible bool
	Balance  int64
	Minimum  int64
}

// RouletteService defines the interface for solo roulette operations
type RouletteService interface {
	// Spin resolves a roulette spin for the given stake, or leaves a bonus
	// round pending when the draw lands on BONUS
	Spin(ctx context.Context, username string, stake int64) (*models.SpinResult, error)

	// ChooseWall completes a pending bonus round with a wall choice in {1,2,3}
	ChooseWall(ctx context.Context, username string, stake int64, choice int) (*models.WallChoiceResult, error)
}

// BetBookService defines the interface for the peer bet book
type BetBookService interface {
	// CreateBet escrows the creator's stake and opens a new bet
	CreateBet(ctx context.Context, creator string, amount int64) (*models.PeerBet, error)

	// ListOpenBets returns all unmatched bets
	ListOpenBets(ctx context.Context) ([]*models.PeerBet, error)

	// AcceptBet matches an acceptor against an open bet and resolves the pot
	AcceptBet(ctx context.Context, betID string, acceptor string) (*models.BetResult, error)
}

// AdminService defines the interface for the admin command console
type AdminService interface {
	// Execute parses and runs a single admin command string
	Execute(ctx context.Context, raw string) error
}

// PromoService defines the interface for promo code redemption
type PromoService interface {
	// Redeem applies a promo code to an account
	Redeem(ctx context.Context, username, code string) (*models.PromoCode, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	BetRepository() BetRepository
	PromoRepository() PromoRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
