package service

import (
	"context"
	"fmt"

	"goldhouse/models"

	log "github.com/sirupsen/logrus"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{
		uowFactory: uowFactory,
	}
}

// Execute parses and runs a single admin command string
func (s *adminService) Execute(ctx context.Context, raw string) error {
	command, err := ParseAdminCommand(raw)
	if err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	switch cmd := command.(type) {
	case CreditCommand:
		err = s.credit(ctx, uow, cmd)
	case BanCommand:
		err = s.ban(ctx, uow, cmd)
	case PromoCommand:
		err = uow.PromoRepository().Create(ctx, &models.PromoCode{
			Code:            cmd.Code,
			Kind:            models.PromoKindBalance,
			Amount:          cmd.Amount,
			ActivationsLeft: cmd.Activations,
		})
	case LuckyPromoCommand:
		err = uow.PromoRepository().Create(ctx, &models.PromoCode{
			Code:            cmd.Code,
			Kind:            models.PromoKindLucky,
			ActivationsLeft: cmd.Activations,
		})
	default:
		err = fmt.Errorf("%w: unhandled command type %T", ErrInvalidCommand, command)
	}
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	log.WithField("command", raw).Info("Admin command executed")
	return nil
}

func (s *adminService) credit(ctx context.Context, uow UnitOfWork, cmd CreditCommand) error {
	// A debit larger than the balance floors at zero rather than failing;
	// the clamp happens in the database so concurrent movements cannot
	// slip between a read and the update.
	before, after, err := uow.AccountRepository().AdjustBalanceClamped(ctx, cmd.Username, cmd.Amount)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	kind := models.TransactionTypeAdminCredit
	if cmd.Amount < 0 {
		kind = models.TransactionTypeAdminDebit
	}
	transaction := &models.Transaction{
		Username:      cmd.Username,
		Type:          kind,
		Amount:        after - before,
		BalanceBefore: before,
		BalanceAfter:  after,
		Metadata: map[string]any{
			"requested_amount": cmd.Amount,
		},
	}
	return RecordBalanceChange(ctx, uow, transaction)
}

func (s *adminService) ban(ctx context.Context, uow UnitOfWork, cmd BanCommand) error {
	account, err := uow.AccountRepository().GetByUsername(ctx, cmd.Username)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, cmd.Username)
	}

	if err := uow.AccountRepository().SetBanned(ctx, cmd.Username, true); err != nil {
		return fmt.Errorf("failed to ban account: %w", err)
	}
	return nil
}
