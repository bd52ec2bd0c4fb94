package service

import (
	"fmt"
	"strconv"
	"strings"
)

// AdminCommand is the closed set of commands the admin console accepts.
// Parsing produces one typed variant per command kind; anything that does not
// parse is ErrInvalidCommand and causes no mutation.
type AdminCommand interface {
	isAdminCommand()
}

// CreditCommand adjusts an account balance by a signed amount. A negative
// adjustment floors the balance at zero instead of failing.
type CreditCommand struct {
	Username string
	Amount   int64 // signed
}

// BanCommand bars an account from all wager-affecting operations
type BanCommand struct {
	Username string
}

// PromoCommand issues a balance promo code
type PromoCommand struct {
	Code        string
	Activations int64
	Amount      int64
}

// LuckyPromoCommand issues a lucky-mode promo code
type LuckyPromoCommand struct {
	Code        string
	Activations int64
}

func (CreditCommand) isAdminCommand()     {}
func (BanCommand) isAdminCommand()        {}
func (PromoCommand) isAdminCommand()      {}
func (LuckyPromoCommand) isAdminCommand() {}

// ParseAdminCommand parses a single whitespace-separated command string.
//
//	/credit <username> +N | -N
//	/ban <username>
//	/promo <code> <activations> <amount>
//	/lucky <code> <activations>
func ParseAdminCommand(raw string) (AdminCommand, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}

	switch tokens[0] {
	case "/credit":
		if len(tokens) != 3 {
			return nil, fmt.Errorf("%w: usage /credit <username> +N|-N", ErrInvalidCommand)
		}
		amountToken := tokens[2]
		if !strings.HasPrefix(amountToken, "+") && !strings.HasPrefix(amountToken, "-") {
			return nil, fmt.Errorf("%w: amount must carry a sign", ErrInvalidCommand)
		}
		amount, err := strconv.ParseInt(amountToken, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q", ErrInvalidCommand, amountToken)
		}
		// Any non-plus form subtracts the absolute value
		if amountToken[0] != '+' && amount > 0 {
			amount = -amount
		}
		return CreditCommand{Username: tokens[1], Amount: amount}, nil

	case "/ban":
		if len(tokens) != 2 {
			return nil, fmt.Errorf("%w: usage /ban <username>", ErrInvalidCommand)
		}
		return BanCommand{Username: tokens[1]}, nil

	case "/promo":
		if len(tokens) != 4 {
			return nil, fmt.Errorf("%w: usage /promo <code> <activations> <amount>", ErrInvalidCommand)
		}
		activations, err := strconv.ParseInt(tokens[2], 10, 64)
		if err != nil || activations <= 0 {
			return nil, fmt.Errorf("%w: bad activation count %q", ErrInvalidCommand, tokens[2])
		}
		amount, err := strconv.ParseInt(tokens[3], 10, 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("%w: bad amount %q", ErrInvalidCommand, tokens[3])
		}
		return PromoCommand{Code: tokens[1], Activations: activations, Amount: amount}, nil

	case "/lucky":
		if len(tokens) != 3 {
			return nil, fmt.Errorf("%w: usage /lucky <code> <activations>", ErrInvalidCommand)
		}
		activations, err := strconv.ParseInt(tokens[2], 10, 64)
		if err != nil || activations <= 0 {
			return nil, fmt.Errorf("%w: bad activation count %q", ErrInvalidCommand, tokens[2])
		}
		return LuckyPromoCommand{Code: tokens[1], Activations: activations}, nil
	}

	return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, tokens[0])
}
