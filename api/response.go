package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"goldhouse/models"
	"goldhouse/service"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

type accountResponse struct {
	Username  string `json:"username"`
	Balance   int64  `json:"balance"`
	Banned    bool   `json:"banned"`
	LuckyMode bool   `json:"luckyMode"`
}

type loginResponse struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
	Token    string `json:"token"`
}

type spinResponse struct {
	Outcome      models.SpinOutcome `json:"outcome"`
	Delta        int64              `json:"delta"`
	Balance      int64              `json:"balance"`
	PendingBonus bool               `json:"pendingBonus"`
}

type wallChoiceResponse struct {
	Wall       int   `json:"wall"`
	Multiplier int64 `json:"multiplier"`
	Delta      int64 `json:"delta"`
	Balance    int64 `json:"balance"`
}

type betResponse struct {
	ID        string    `json:"id"`
	Creator   string    `json:"creator"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

type betResultResponse struct {
	BetID   string `json:"betId"`
	Winner  string `json:"winner"`
	Loser   string `json:"loser"`
	Pot     int64  `json:"pot"`
	Won     bool   `json:"won"`
	Balance int64  `json:"balance"`
}

type transactionResponse struct {
	Type      models.TransactionType `json:"type"`
	Amount    int64                  `json:"amount"`
	Balance   int64                  `json:"balance"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type withdrawalResponse struct {
	Eligible bool  `json:"eligible"`
	Balance  int64 `json:"balance"`
	Minimum  int64 `json:"minimum"`
}

type promoResponse struct {
	Code   string           `json:"code"`
	Kind   models.PromoKind `json:"kind"`
	Amount int64            `json:"amount"`
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func sendErrorResponse(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, errorResponse{Error: message})
}

// sendServiceError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without leaking internals.
func sendServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStake),
		errors.Is(err, service.ErrInvalidWallChoice),
		errors.Is(err, service.ErrInvalidCommand),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrPromoInvalid):
		sendErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		sendErrorResponse(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrAccountBanned):
		sendErrorResponse(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrUserNotFound):
		sendErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrBetAlreadyMatched),
		errors.Is(err, service.ErrSelfMatch),
		errors.Is(err, service.ErrSpinInProgress),
		errors.Is(err, service.ErrNoPendingBonus),
		errors.Is(err, service.ErrPromoAlreadyUsed):
		sendErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrTooManyAccounts):
		sendErrorResponse(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, service.ErrStorageUnavailable):
		sendErrorResponse(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		log.WithError(err).Error("Unhandled service error")
		sendErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

func newAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		Username:  account.Username,
		Balance:   account.Balance,
		Banned:    account.Banned,
		LuckyMode: account.LuckyMode,
	}
}

func newBetResponse(bet *models.PeerBet) betResponse {
	return betResponse{
		ID:        bet.ID,
		Creator:   bet.Creator,
		Amount:    bet.Amount,
		CreatedAt: bet.CreatedAt,
	}
}
