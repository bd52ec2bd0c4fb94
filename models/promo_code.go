package models

import (
	"time"
)

// PromoKind represents what a promo code grants on redemption
type PromoKind string

const (
	// PromoKindBalance credits a fixed amount of gold
	PromoKindBalance PromoKind = "balance"
	// PromoKindLucky switches the account to the lucky outcome table
	PromoKindLucky PromoKind = "lucky"
)

// PromoCode represents an admin-issued code with a limited number of
// activations. Each account may redeem a given code at most once.
type PromoCode struct {
	Code            string    `db:"code"`
	Kind            PromoKind `db:"kind"`
	Amount          int64     `db:"amount"`
	ActivationsLeft int64     `db:"activations_left"`
	CreatedAt       time.Time `db:"created_at"`
}

// Redeemable checks whether the code still has activations available
func (p *PromoCode) Redeemable() bool {
	return p.ActivationsLeft > 0
}
