package repository

import (
	"context"
	"fmt"

	"goldhouse/database"
	"goldhouse/models"

	"github.com/jackc/pgx/v5"
)

// PromoRepository implements the service.PromoRepository interface
type PromoRepository struct {
	q queryable
}

// NewPromoRepository creates a new promo repository
func NewPromoRepository(db *database.DB) *PromoRepository {
	return &PromoRepository{q: db.Pool}
}

// newPromoRepositoryWithTx creates a new promo repository with a transaction
func newPromoRepositoryWithTx(tx queryable) *PromoRepository {
	return &PromoRepository{q: tx}
}

// Create inserts a new promo code
func (r *PromoRepository) Create(ctx context.Context, code *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes (code, kind, amount, activations_left)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, code.Code, code.Kind, code.Amount, code.ActivationsLeft).Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create promo code %s: %w", code.Code, err)
	}

	return nil
}

// GetByCode retrieves a promo code
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `
		SELECT code, kind, amount, activations_left, created_at
		FROM promo_codes
		WHERE code = $1
	`

	var promo models.PromoCode
	err := r.q.QueryRow(ctx, query, code).Scan(
		&promo.Code,
		&promo.Kind,
		&promo.Amount,
		&promo.ActivationsLeft,
		&promo.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code %s: %w", code, err)
	}

	return &promo, nil
}

// HasActivation checks whether an account already redeemed a code
func (r *PromoRepository) HasActivation(ctx context.Context, username, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM promo_activations WHERE username = $1 AND code = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, username, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check promo activation: %w", err)
	}

	return exists, nil
}

// RecordActivation marks a code as redeemed by an account
func (r *PromoRepository) RecordActivation(ctx context.Context, username, code string) error {
	query := `INSERT INTO promo_activations (username, code) VALUES ($1, $2)`

	if _, err := r.q.Exec(ctx, query, username, code); err != nil {
		return fmt.Errorf("failed to record promo activation: %w", err)
	}

	return nil
}

// DecrementActivations consumes one activation, returning false when the
// code has none left
func (r *PromoRepository) DecrementActivations(ctx context.Context, code string) (bool, error) {
	query := `
		UPDATE promo_codes
		SET activations_left = activations_left - 1
		WHERE code = $1 AND activations_left > 0
	`

	result, err := r.q.Exec(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("failed to decrement activations for %s: %w", code, err)
	}

	return result.RowsAffected() > 0, nil
}
