package models

import (
	"time"
)

// Account represents a registered player with a gold balance
type Account struct {
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Balance      int64     `db:"balance"`
	Banned       bool      `db:"banned"`
	LuckyMode    bool      `db:"lucky_mode"`
	IPAddress    string    `db:"ip_address"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CanWager checks whether the account is allowed to take part in
// wager-affecting operations
func (a *Account) CanWager() bool {
	return !a.Banned
}

// CanAfford checks whether the account balance covers the given amount
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}
