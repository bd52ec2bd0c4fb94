package repository

import (
	"context"
	"fmt"

	"goldhouse/database"
	"goldhouse/models"
	"goldhouse/service"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT username, password_hash, balance, banned, lucky_mode, ip_address, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, username).Scan(
		&account.Username,
		&account.PasswordHash,
		&account.Balance,
		&account.Banned,
		&account.LuckyMode,
		&account.IPAddress,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", username, err)
	}

	return &account, nil
}

// Create inserts a new account record
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (username, password_hash, balance, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Balance,
		account.IPAddress,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.Username, err)
	}

	return nil
}

// AdjustBalance applies a signed delta to an account's balance atomically.
// The condition makes the database the final enforcer of the non-negative
// balance invariant; zero affected rows means either a missing account or
// insufficient funds.
func (r *AccountRepository) AdjustBalance(ctx context.Context, username string, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE username = $2 AND balance + $1 >= 0
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, username).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		account, getErr := r.GetByUsername(ctx, username)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check account: %w", getErr)
		}
		if account == nil {
			return 0, fmt.Errorf("%w: %s", service.ErrUserNotFound, username)
		}
		return 0, fmt.Errorf("%w: have %d, need %d", service.ErrInsufficientFunds, account.Balance, -delta)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for %s: %w", username, err)
	}

	return newBalance, nil
}

// AdjustBalanceClamped applies a signed delta, clamping the result at zero
// instead of failing. The self-join locks the row so nothing moves the
// balance between the before read and the clamp. Returns the balance before
// and after the adjustment.
func (r *AccountRepository) AdjustBalanceClamped(ctx context.Context, username string, delta int64) (int64, int64, error) {
	query := `
		UPDATE accounts AS a
		SET balance = GREATEST(0, a.balance + $1), updated_at = NOW()
		FROM (SELECT username, balance FROM accounts WHERE username = $2 FOR UPDATE) AS prev
		WHERE a.username = prev.username
		RETURNING prev.balance, a.balance
	`

	var before, after int64
	err := r.q.QueryRow(ctx, query, delta, username).Scan(&before, &after)
	if err == pgx.ErrNoRows {
		return 0, 0, fmt.Errorf("%w: %s", service.ErrUserNotFound, username)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to adjust balance for %s: %w", username, err)
	}

	return before, after, nil
}

// SetBanned updates the banned flag
func (r *AccountRepository) SetBanned(ctx context.Context, username string, banned bool) error {
	query := `
		UPDATE accounts
		SET banned = $1, updated_at = NOW()
		WHERE username = $2
	`

	result, err := r.q.Exec(ctx, query, banned, username)
	if err != nil {
		return fmt.Errorf("failed to set banned flag for %s: %w", username, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", service.ErrUserNotFound, username)
	}

	return nil
}

// SetLuckyMode updates the lucky-mode flag
func (r *AccountRepository) SetLuckyMode(ctx context.Context, username string, lucky bool) error {
	query := `
		UPDATE accounts
		SET lucky_mode = $1, updated_at = NOW()
		WHERE username = $2
	`

	result, err := r.q.Exec(ctx, query, lucky, username)
	if err != nil {
		return fmt.Errorf("failed to set lucky mode for %s: %w", username, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", service.ErrUserNotFound, username)
	}

	return nil
}

// CountByIP returns how many accounts were registered from an address
func (r *AccountRepository) CountByIP(ctx context.Context, ip string) (int64, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE ip_address = $1`

	var count int64
	if err := r.q.QueryRow(ctx, query, ip).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts for address: %w", err)
	}

	return count, nil
}

// Search returns accounts whose username contains the query, newest first
func (r *AccountRepository) Search(ctx context.Context, query string, limit int) ([]*models.Account, error) {
	sql := `
		SELECT username, password_hash, balance, banned, lucky_mode, ip_address, created_at, updated_at
		FROM accounts
		WHERE username ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.Username,
			&account.PasswordHash,
			&account.Balance,
			&account.Banned,
			&account.LuckyMode,
			&account.IPAddress,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
