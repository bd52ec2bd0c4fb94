package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goldhouse/config"
	"goldhouse/events"
	"goldhouse/models"

	log "github.com/sirupsen/logrus"
)

// spinSession tracks one in-flight spin for an account. The random draw is
// committed the moment the spin is accepted; the artificial delay and the
// bonus wall choice never re-draw.
type spinSession struct {
	state       models.SpinState
	stake       int64
	draw        float64
	multipliers [3]int64
}

type rouletteService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
	cfg        *config.Config

	mu       sync.Mutex
	sessions map[string]*spinSession
}

// NewRouletteService creates a new roulette service
func NewRouletteService(uowFactory UnitOfWorkFactory, rng Rand, cfg *config.Config) RouletteService {
	return &rouletteService{
		uowFactory: uowFactory,
		rng:        rng,
		cfg:        cfg,
		sessions:   make(map[string]*spinSession),
	}
}

// Spin resolves a roulette spin for the given stake. At most one spin may be
// in flight per account; a BONUS draw leaves the session pending until the
// wall choice completes it.
func (s *rouletteService) Spin(ctx context.Context, username string, stake int64) (*models.SpinResult, error) {
	if stake < s.cfg.MinBet {
		return nil, fmt.Errorf("%w: minimum bet is %d", ErrInvalidStake, s.cfg.MinBet)
	}

	session := &spinSession{state: models.SpinStateSpinning, stake: stake}
	s.mu.Lock()
	if _, running := s.sessions[username]; running {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w for %s", ErrSpinInProgress, username)
	}
	s.sessions[username] = session
	s.mu.Unlock()

	result, err := s.runSpin(ctx, username, session)
	if err != nil || !result.PendingBonus {
		s.clearSession(username)
	}
	return result, err
}

func (s *rouletteService) runSpin(ctx context.Context, username string, session *spinSession) (*models.SpinResult, error) {
	account, err := s.loadAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if !account.CanWager() {
		return nil, fmt.Errorf("%w: %s", ErrAccountBanned, username)
	}
	if !account.CanAfford(session.stake) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, account.Balance, session.stake)
	}

	// The draw is committed before the delay; an interrupted spin still
	// resolves from this value.
	session.draw = s.rng.Float64() * 100
	outcome := models.ClassifyDraw(session.draw, account.LuckyMode)

	if s.cfg.SpinDelay > 0 {
		time.Sleep(s.cfg.SpinDelay)
	}

	if outcome == models.SpinOutcomeBonus {
		session.multipliers = models.ShuffleWalls(s.rng.Perm(3))
		session.state = models.SpinStateAwaitingWall

		log.WithFields(log.Fields{
			"username": username,
			"stake":    session.stake,
		}).Info("Spin landed on bonus, awaiting wall choice")

		return &models.SpinResult{Outcome: outcome, PendingBonus: true}, nil
	}

	delta := models.SpinDelta(outcome, session.stake)
	newBalance, err := s.applySpinOutcome(ctx, username, session, outcome, delta)
	if err != nil {
		return nil, err
	}

	return &models.SpinResult{
		Outcome:    outcome,
		Delta:      delta,
		NewBalance: newBalance,
	}, nil
}

// ChooseWall completes a pending bonus round. Exactly one wall choice is
// accepted per bonus round.
func (s *rouletteService) ChooseWall(ctx context.Context, username string, stake int64, choice int) (*models.WallChoiceResult, error) {
	if choice < 1 || choice > 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWallChoice, choice)
	}

	s.mu.Lock()
	session, ok := s.sessions[username]
	if !ok || session.state != models.SpinStateAwaitingWall {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w for %s", ErrNoPendingBonus, username)
	}
	if session.stake != stake {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: pending bonus round has stake %d", ErrInvalidStake, session.stake)
	}
	// Claim the session so a concurrent choice cannot resolve it twice
	session.state = models.SpinStateResolved
	s.mu.Unlock()

	// The banned flag may have changed since the spin; a banned account
	// does not collect the payout and the pending round is voided.
	account, err := s.loadAccount(ctx, username)
	if err != nil {
		s.reopenSession(session)
		return nil, err
	}
	if !account.CanWager() {
		s.clearSession(username)
		return nil, fmt.Errorf("%w: %s", ErrAccountBanned, username)
	}

	multiplier := session.multipliers[choice-1]
	delta := session.stake * multiplier

	newBalance, err := s.applyWallChoice(ctx, username, session, choice, multiplier, delta)
	if err != nil {
		// Storage failures are recoverable: reopen the round for a retry
		s.reopenSession(session)
		return nil, err
	}

	s.clearSession(username)

	return &models.WallChoiceResult{
		Wall:       choice,
		Multiplier: multiplier,
		Delta:      delta,
		NewBalance: newBalance,
	}, nil
}

func (s *rouletteService) loadAccount(ctx context.Context, username string) (*models.Account, error) {
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
	return account, nil
}

func (s *rouletteService) applySpinOutcome(ctx context.Context, username string, session *spinSession, outcome models.SpinOutcome, delta int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	newBalance, err := uow.AccountRepository().AdjustBalance(ctx, username, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to apply spin delta: %w", err)
	}

	transaction := &models.Transaction{
		Username:      username,
		Type:          spinTransactionType(outcome),
		Amount:        delta,
		BalanceBefore: newBalance - delta,
		BalanceAfter:  newBalance,
		Metadata: map[string]any{
			"stake":   session.stake,
			"draw":    session.draw,
			"outcome": outcome,
		},
	}
	if err := RecordBalanceChange(ctx, uow, transaction); err != nil {
		return 0, err
	}

	uow.EventBus().Publish(events.SpinResolvedEvent{
		Username: username,
		Stake:    session.stake,
		Outcome:  outcome,
		Delta:    delta,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return newBalance, nil
}

func (s *rouletteService) applyWallChoice(ctx context.Context, username string, session *spinSession, wall int, multiplier, delta int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer uow.Rollback()

	newBalance, err := uow.AccountRepository().AdjustBalance(ctx, username, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to credit bonus win: %w", err)
	}

	transaction := &models.Transaction{
		Username:      username,
		Type:          models.TransactionTypeRouletteBonus,
		Amount:        delta,
		BalanceBefore: newBalance - delta,
		BalanceAfter:  newBalance,
		Metadata: map[string]any{
			"stake":      session.stake,
			"wall":       wall,
			"multiplier": multiplier,
		},
	}
	if err := RecordBalanceChange(ctx, uow, transaction); err != nil {
		return 0, err
	}

	uow.EventBus().Publish(events.SpinResolvedEvent{
		Username: username,
		Stake:    session.stake,
		Outcome:  models.SpinOutcomeBonus,
		Delta:    delta,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return newBalance, nil
}

func (s *rouletteService) reopenSession(session *spinSession) {
	s.mu.Lock()
	session.state = models.SpinStateAwaitingWall
	s.mu.Unlock()
}

func (s *rouletteService) clearSession(username string) {
	s.mu.Lock()
	delete(s.sessions, username)
	s.mu.Unlock()
}

func spinTransactionType(outcome models.SpinOutcome) models.TransactionType {
	switch outcome {
	case models.SpinOutcomeWin:
		return models.TransactionTypeRouletteWin
	case models.SpinOutcomeLoss:
		return models.TransactionTypeRouletteLoss
	default:
		return models.TransactionTypeRouletteWash
	}
}
