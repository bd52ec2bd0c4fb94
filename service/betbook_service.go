package service

import (
	"context"
	"fmt"

	"goldhouse/config"
	"goldhouse/events"
	"goldhouse/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type betBookService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
	cfg        *config.Config
}

// NewBetBookService creates a new peer bet book service
func NewBetBookService(uowFactory UnitOfWorkFactory, rng Rand, cfg *config.Config) BetBookService {
	return &betBookService{
		uowFactory: uowFactory,
		rng:        rng,
		cfg:        cfg,
	}
}

// CreateBet escrows the creator's stake and opens a new bet
func (s *betBookService) CreateBet(ctx context.Context, creator string, amount int64) (*models.PeerBet, error) {
	if amount < s.cfg.MinBet {
		return nil, fmt.Errorf("%w: minimum bet is %d", ErrInvalidStake, s.cfg.MinBet)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, creator)
	}
	if !account.CanWager() {
		return nil, fmt.Errorf("%w: %s", ErrAccountBanned, creator)
	}
	if !account.CanAfford(amount) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, account.Balance, amount)
	}

	// Escrow the stake immediately; it is only returned through the pot
	newBalance, err := uow.AccountRepository().AdjustBalance(ctx, creator, -amount)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow stake: %w", err)
	}

	bet := &models.PeerBet{
		ID:      uuid.NewString(),
		Creator: creator,
		Amount:  amount,
		Active:  true,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	transaction := &models.Transaction{
		Username:      creator,
		Type:          models.TransactionTypeBetCreated,
		Amount:        -amount,
		BalanceBefore: newBalance + amount,
		BalanceAfter:  newBalance,
		Metadata: map[string]any{
			"bet_id": bet.ID,
		},
	}
	if err := RecordBalanceChange(ctx, uow, transaction); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return bet, nil
}

// ListOpenBets returns all unmatched bets, newest first
func (s *betBookService) ListOpenBets(ctx context.Context) ([]*models.PeerBet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open bets: %w", err)
	}

	return bets, nil
}

// AcceptBet matches an acceptor against an open bet and resolves the pot.
// The claim, both balance movements and both ledger entries commit as one
// unit; a bet can never be accepted twice.
func (s *betBookService) AcceptBet(ctx context.Context, betID string, acceptor string) (*models.BetResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil || !bet.IsOpen() {
		return nil, fmt.Errorf("%w: %s", ErrBetAlreadyMatched, betID)
	}
	if !bet.AcceptableBy(acceptor) {
		return nil, fmt.Errorf("%w: %s", ErrSelfMatch, betID)
	}

	account, err := uow.AccountRepository().GetByUsername(ctx, acceptor)
	if err != nil {
		return nil, fmt.Errorf("failed to get acceptor: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, acceptor)
	}
	if !account.CanWager() {
		return nil, fmt.Errorf("%w: %s", ErrAccountBanned, acceptor)
	}
	if !account.CanAfford(bet.Amount) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, account.Balance, bet.Amount)
	}

	creatorAccount, err := uow.AccountRepository().GetByUsername(ctx, bet.Creator)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creatorAccount == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, bet.Creator)
	}

	// First acceptor to claim wins the match
	claimed, err := uow.BetRepository().Claim(ctx, betID, acceptor)
	if err != nil {
		return nil, fmt.Errorf("failed to claim bet: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: %s", ErrBetAlreadyMatched, betID)
	}

	// Both sides have now put up the stake; the pot goes to one of them
	pot := 2 * bet.Amount
	draw := s.rng.Float64() * float64(pot)
	creatorWon := draw < float64(bet.Amount)

	if err := uow.BetRepository().SetOutcome(ctx, betID, creatorWon); err != nil {
		return nil, fmt.Errorf("failed to record bet outcome: %w", err)
	}

	acceptorAfterDebit, err := uow.AccountRepository().AdjustBalance(ctx, acceptor, -bet.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit acceptor: %w", err)
	}

	result := &models.BetResult{
		Bet:         bet,
		Pot:         pot,
		AcceptorWon: !creatorWon,
	}

	if creatorWon {
		creatorAfterPot, err := uow.AccountRepository().AdjustBalance(ctx, bet.Creator, pot)
		if err != nil {
			return nil, fmt.Errorf("failed to credit pot: %w", err)
		}

		result.Winner = bet.Creator
		result.Loser = acceptor
		result.NewBalance = acceptorAfterDebit

		err = s.recordResolution(ctx, uow, bet,
			ledgerEntry{bet.Creator, models.TransactionTypeBetWon, bet.Amount, creatorAfterPot - pot, creatorAfterPot},
			ledgerEntry{acceptor, models.TransactionTypeBetLost, -bet.Amount, acceptorAfterDebit + bet.Amount, acceptorAfterDebit},
		)
		if err != nil {
			return nil, err
		}
	} else {
		acceptorAfterPot, err := uow.AccountRepository().AdjustBalance(ctx, acceptor, pot)
		if err != nil {
			return nil, fmt.Errorf("failed to credit pot: %w", err)
		}

		result.Winner = acceptor
		result.Loser = bet.Creator
		result.NewBalance = acceptorAfterPot

		// The creator's stake was already escrowed at creation; their loss
		// entry records no further movement
		err = s.recordResolution(ctx, uow, bet,
			ledgerEntry{acceptor, models.TransactionTypeBetWon, bet.Amount, acceptorAfterDebit + bet.Amount, acceptorAfterPot},
			ledgerEntry{bet.Creator, models.TransactionTypeBetLost, -bet.Amount, creatorAccount.Balance, creatorAccount.Balance},
		)
		if err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.BetMatchedEvent{
		BetID:    bet.ID,
		Creator:  bet.Creator,
		Acceptor: acceptor,
		Amount:   bet.Amount,
		Winner:   result.Winner,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	log.WithFields(log.Fields{
		"betId":    bet.ID,
		"creator":  bet.Creator,
		"acceptor": acceptor,
		"amount":   bet.Amount,
		"winner":   result.Winner,
	}).Info("Peer bet resolved")

	return result, nil
}

type ledgerEntry struct {
	username      string
	kind          models.TransactionType
	amount        int64
	balanceBefore int64
	balanceAfter  int64
}

func (s *betBookService) recordResolution(ctx context.Context, uow UnitOfWork, bet *models.PeerBet, entries ...ledgerEntry) error {
	for _, e := range entries {
		transaction := &models.Transaction{
			Username:      e.username,
			Type:          e.kind,
			Amount:        e.amount,
			BalanceBefore: e.balanceBefore,
			BalanceAfter:  e.balanceAfter,
			Metadata: map[string]any{
				"bet_id": bet.ID,
				"stake":  bet.Amount,
				"pot":    2 * bet.Amount,
			},
		}
		if err := RecordBalanceChange(ctx, uow, transaction); err != nil {
			return err
		}
	}
	return nil
}
