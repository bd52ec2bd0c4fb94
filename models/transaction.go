package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeSignupBonus   TransactionType = "signup_bonus"
	TransactionTypeRouletteWin   TransactionType = "roulette_win"
	TransactionTypeRouletteLoss  TransactionType = "roulette_loss"
	TransactionTypeRouletteWash  TransactionType = "roulette_neutral"
	TransactionTypeRouletteBonus TransactionType = "roulette_bonus"
	TransactionTypeBetCreated    TransactionType = "bet_created"
	TransactionTypeBetWon        TransactionType = "bet_won"
	TransactionTypeBetLost       TransactionType = "bet_lost"
	TransactionTypeAdminCredit   TransactionType = "admin_credit"
	TransactionTypeAdminDebit    TransactionType = "admin_debit"
	TransactionTypePromoBonus    TransactionType = "promo_bonus"
)

// Transaction represents one append-only ledger entry for an account.
// Amount is the signed net delta of the causing event; BalanceBefore and
// BalanceAfter record the actual balance movement applied by this entry,
// which can differ from Amount when part of the stake was escrowed earlier
// (peer bet resolution).
type Transaction struct {
	ID            int64           `db:"id"`
	Username      string          `db:"username"`
	Type          TransactionType `db:"type"`
	Amount        int64           `db:"amount"`
	BalanceBefore int64           `db:"balance_before"`
	BalanceAfter  int64           `db:"balance_after"`
	Metadata      map[string]any  `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
}
