package service

import (
	"context"
	"fmt"

	"goldhouse/models"
)

type promoService struct {
	uowFactory UnitOfWorkFactory
}

// NewPromoService creates a new promo service
func NewPromoService(uowFactory UnitOfWorkFactory) PromoService {
	return &promoService{
		uowFactory: uowFactory,
	}
}

// Redeem applies a promo code to an account. Each account may redeem a given
// code at most once; every redemption consumes one activation.
func (s *promoService) Redeem(ctx context.Context, username, code string) (*models.PromoCode, error) {
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
	if !account.CanWager() {
		return nil, fmt.Errorf("%w: %s", ErrAccountBanned, username)
	}

	used, err := uow.PromoRepository().HasActivation(ctx, username, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check activation: %w", err)
	}
	if used {
		return nil, fmt.Errorf("%w: %s", ErrPromoAlreadyUsed, code)
	}

	promo, err := uow.PromoRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if promo == nil || !promo.Redeemable() {
		return nil, fmt.Errorf("%w: %s", ErrPromoInvalid, code)
	}

	// Consume the activation first; a concurrent redemption of the last
	// activation loses here
	consumed, err := uow.PromoRepository().DecrementActivations(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to consume activation: %w", err)
	}
	if !consumed {
		return nil, fmt.Errorf("%w: %s", ErrPromoInvalid, code)
	}
	if err := uow.PromoRepository().RecordActivation(ctx, username, code); err != nil {
		return nil, fmt.Errorf("failed to record activation: %w", err)
	}

	switch promo.Kind {
	case models.PromoKindBalance:
		newBalance, err := uow.AccountRepository().AdjustBalance(ctx, username, promo.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to credit promo amount: %w", err)
		}
		transaction := &models.Transaction{
			Username:      username,
			Type:          models.TransactionTypePromoBonus,
			Amount:        promo.Amount,
			BalanceBefore: newBalance - promo.Amount,
			BalanceAfter:  newBalance,
			Metadata: map[string]any{
				"code": code,
			},
		}
		if err := RecordBalanceChange(ctx, uow, transaction); err != nil {
			return nil, err
		}
	case models.PromoKindLucky:
		if err := uow.AccountRepository().SetLuckyMode(ctx, username, true); err != nil {
			return nil, fmt.Errorf("failed to enable lucky mode: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrPromoInvalid, promo.Kind)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return promo, nil
}
