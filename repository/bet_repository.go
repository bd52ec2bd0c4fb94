package repository

import (
	"context"
	"fmt"

	"goldhouse/database"
	"goldhouse/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a new open bet
func (r *BetRepository) Create(ctx context.Context, bet *models.PeerBet) error {
	query := `
		INSERT INTO bets (id, creator, amount, active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, bet.ID, bet.Creator, bet.Amount, bet.Active).Scan(&bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet %s: %w", bet.ID, err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id string) (*models.PeerBet, error) {
	query := `
		SELECT id, creator, amount, active, acceptor, creator_won, created_at, matched_at
		FROM bets
		WHERE id = $1
	`

	var bet models.PeerBet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.Creator,
		&bet.Amount,
		&bet.Active,
		&bet.Acceptor,
		&bet.CreatorWon,
		&bet.CreatedAt,
		&bet.MatchedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", id, err)
	}

	return &bet, nil
}

// GetOpen returns all open bets, newest first
func (r *BetRepository) GetOpen(ctx context.Context) ([]*models.PeerBet, error) {
	query := `
		SELECT id, creator, amount, active, acceptor, creator_won, created_at, matched_at
		FROM bets
		WHERE active
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get open bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.PeerBet
	for rows.Next() {
		var bet models.PeerBet
		err := rows.Scan(
			&bet.ID,
			&bet.Creator,
			&bet.Amount,
			&bet.Active,
			&bet.Acceptor,
			&bet.CreatorWon,
			&bet.CreatedAt,
			&bet.MatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// Claim atomically takes a bet off the open list for the given acceptor.
// The conditional update guarantees exactly one acceptor can match a bet.
func (r *BetRepository) Claim(ctx context.Context, id string, acceptor string) (bool, error) {
	query := `
		UPDATE bets
		SET active = FALSE, acceptor = $2, matched_at = NOW()
		WHERE id = $1 AND active
	`

	result, err := r.q.Exec(ctx, query, id, acceptor)
	if err != nil {
		return false, fmt.Errorf("failed to claim bet %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// SetOutcome records which side won a claimed bet
func (r *BetRepository) SetOutcome(ctx context.Context, id string, creatorWon bool) error {
	query := `
		UPDATE bets
		SET creator_won = $2
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, creatorWon)
	if err != nil {
		return fmt.Errorf("failed to set outcome for bet %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %s not found", id)
	}

	return nil
}
