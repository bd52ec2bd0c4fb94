package models

import (
	"time"
)

// PeerBet represents a player-created stake open for any other player to
// accept. The creator's stake is escrowed from their balance the moment
// the bet is created.
type PeerBet struct {
	ID         string     `db:"id"`
	Creator    string     `db:"creator"`
	Amount     int64      `db:"amount"`
	Active     bool       `db:"active"`
	Acceptor   *string    `db:"acceptor"`
	CreatorWon *bool      `db:"creator_won"`
	CreatedAt  time.Time  `db:"created_at"`
	MatchedAt  *time.Time `db:"matched_at"`
}

// IsOpen checks whether the bet can still be accepted
func (b *PeerBet) IsOpen() bool {
	return b.Active
}

// AcceptableBy checks whether the given user may accept this bet.
// A creator can never match their own bet.
func (b *PeerBet) AcceptableBy(username string) bool {
	return b.Active && b.Creator != username
}

// BetResult represents the outcome of a resolved peer bet
type BetResult struct {
	Bet         *PeerBet
	Winner      string
	Loser       string
	Pot         int64
	AcceptorWon bool
	// NewBalance is the acceptor's balance after resolution
	NewBalance int64
}
