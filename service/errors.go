package service

import (
	"errors"
)

// Domain error kinds. Every validation failure maps onto one of these so
// callers can branch with errors.Is; services wrap them with operation
// context. All are recoverable per request.
var (
	ErrInvalidStake       = errors.New("invalid stake")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountBanned      = errors.New("account is banned")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSelfMatch          = errors.New("cannot accept your own bet")
	ErrBetAlreadyMatched  = errors.New("bet is no longer open")
	ErrInvalidCommand     = errors.New("invalid admin command")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrSpinInProgress    = errors.New("a spin is already in progress")
	ErrNoPendingBonus    = errors.New("no bonus round pending")
	ErrInvalidWallChoice = errors.New("wall choice must be 1, 2 or 3")
	ErrTooManyAccounts   = errors.New("account limit reached for this address")
	ErrPromoAlreadyUsed  = errors.New("promo code already redeemed")
	ErrPromoInvalid      = errors.New("promo code invalid or exhausted")
)
