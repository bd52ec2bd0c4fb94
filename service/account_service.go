package service

import (
	"context"
	"fmt"
	"time"

	"goldhouse/config"
	"goldhouse/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// transactionHistoryLimit caps how many ledger entries are returned per
// account, most recent first.
const transactionHistoryLimit = 50

type accountService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, cfg *config.Config) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// Register creates a new account with the signup bonus
func (s *accountService) Register(ctx context.Context, username, password, ip string) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	if ip != "" && s.cfg.MaxAccountsPerIP > 0 {
		count, err := uow.AccountRepository().CountByIP(ctx, ip)
		if err != nil {
			return nil, fmt.Errorf("failed to count accounts by address: %w", err)
		}
		if count >= s.cfg.MaxAccountsPerIP {
			return nil, fmt.Errorf("%w: %s", ErrTooManyAccounts, ip)
		}
	}

	existing, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Balance:      s.cfg.SignupBonus,
		IPAddress:    ip,
	}
	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	transaction := &models.Transaction{
		Username:      username,
		Type:          models.TransactionTypeSignupBonus,
		Amount:        s.cfg.SignupBonus,
		BalanceBefore: 0,
		BalanceAfter:  s.cfg.SignupBonus,
	}
	if err := RecordBalanceChange(ctx, uow, transaction); err != nil {
		return nil, fmt.Errorf("failed to record signup bonus: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return account, nil
}

// Login verifies credentials and returns the account with a signed token
func (s *accountService) Login(ctx context.Context, username, password string) (*models.Account, string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if account.Banned {
		return nil, "", fmt.Errorf("%w: %s", ErrAccountBanned, username)
	}

	token, err := s.issueToken(username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return account, token, nil
}

func (s *accountService) issueToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ListTransactions returns the account's ledger, most recent first
func (s *accountService) ListTransactions(ctx context.Context, username string) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	transactions, err := uow.TransactionRepository().GetByUser(ctx, username, transactionHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, nil
}

// CheckWithdrawal reports whether the balance passes the withdrawal threshold
func (s *accountService) CheckWithdrawal(ctx context.Context, username string) (*WithdrawalStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	return &WithdrawalStatus{
		Eligible: account.Balance >= s.cfg.MinWithdrawal,
		Balance:  account.Balance,
		Minimum:  s.cfg.MinWithdrawal,
	}, nil
}

// ListAccounts returns accounts matching the search query
func (s *accountService) ListAccounts(ctx context.Context, search string) ([]*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().Search(ctx, search, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}

	return accounts, nil
}
