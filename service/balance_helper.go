package service

import (
	"context"
	"fmt"

	"goldhouse/events"
	"goldhouse/models"
)

// RecordBalanceChange appends a ledger entry and emits the matching event.
// Every balance mutation in the system goes through this single entry point,
// paired with AccountRepository.AdjustBalance inside the same unit of work,
// so the ledger stays a faithful audit trail of every balance movement.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, transaction *models.Transaction) error {
	if err := uow.TransactionRepository().Record(ctx, transaction); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	// Emitted after the transaction commits via the transactional bus
	uow.EventBus().Publish(events.BalanceChangeEvent{
		Username:        transaction.Username,
		OldBalance:      transaction.BalanceBefore,
		NewBalance:      transaction.BalanceAfter,
		TransactionType: transaction.Type,
		ChangeAmount:    transaction.BalanceAfter - transaction.BalanceBefore,
	})

	if transaction.Type == models.TransactionTypeSignupBonus {
		uow.EventBus().Publish(events.AccountCreatedEvent{
			Username:       transaction.Username,
			InitialBalance: transaction.BalanceAfter,
		})
	}

	return nil
}
