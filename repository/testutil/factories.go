package testutil

import (
	"time"

	"goldhouse/models"

	"github.com/google/uuid"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(username string) *models.Account {
	now := time.Now()
	return &models.Account{
		Username:     username,
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtesth",
		Balance:      100,
		IPAddress:    "127.0.0.1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific balance
func CreateTestAccountWithBalance(username string, balance int64) *models.Account {
	account := CreateTestAccount(username)
	account.Balance = balance
	return account
}

// CreateTestTransaction creates a test ledger entry
func CreateTestTransaction(username string, transactionType models.TransactionType) *models.Transaction {
	return &models.Transaction{
		Username:      username,
		Type:          transactionType,
		Amount:        -10,
		BalanceBefore: 100,
		BalanceAfter:  90,
		Metadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestBet creates an open test bet
func CreateTestBet(creator string, amount int64) *models.PeerBet {
	return &models.PeerBet{
		ID:        uuid.NewString(),
		Creator:   creator,
		Amount:    amount,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// CreateTestPromoCode creates a balance promo code with default values
func CreateTestPromoCode(code string) *models.PromoCode {
	return &models.PromoCode{
		Code:            code,
		Kind:            models.PromoKindBalance,
		Amount:          50,
		ActivationsLeft: 10,
		CreatedAt:       time.Now(),
	}
}
