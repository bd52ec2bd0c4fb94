package api

import (
	"encoding/json"
	"net/http"

	"goldhouse/service"

	"github.com/gorilla/mux"
)

type handler struct {
	router   *mux.Router
	accounts service.AccountService
	roulette service.RouletteService
	betBook  service.BetBookService
	promos   service.PromoService
	admin    service.AdminService
}

func (h *handler) initRouter(m *middleware) {
	h.router.Use(m.populate()...)

	h.router.HandleFunc("/api/register", h.register).Methods("POST")
	h.router.HandleFunc("/api/login", h.login).Methods("POST")

	h.router.HandleFunc("/api/spin", m.authenticate(h.spin)).Methods("POST")
	h.router.HandleFunc("/api/spin/wall", m.authenticate(h.chooseWall)).Methods("POST")

	h.router.HandleFunc("/api/bets", h.listBets).Methods("GET")
	h.router.HandleFunc("/api/bets", m.authenticate(h.createBet)).Methods("POST")
	h.router.HandleFunc("/api/bets/{id}/accept", m.authenticate(h.acceptBet)).Methods("POST")

	h.router.HandleFunc("/api/transactions", m.authenticate(h.listTransactions)).Methods("GET")
	h.router.HandleFunc("/api/withdrawal", m.authenticate(h.checkWithdrawal)).Methods("GET")
	h.router.HandleFunc("/api/promo", m.authenticate(h.redeemPromo)).Methods("POST")

	h.router.HandleFunc("/api/admin/command", m.requireAdmin(h.adminCommand)).Methods("POST")
	h.router.HandleFunc("/api/admin/accounts", m.requireAdmin(h.adminAccounts)).Methods("GET")

	h.router.PathPrefix("/").HandlerFunc(h.defaultHandler)
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *handler) defaultHandler(w http.ResponseWriter, r *http.Request) {
	sendErrorResponse(w, "not found", http.StatusNotFound)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	account, token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, loginResponse{
		Username: account.Username,
		Balance:  account.Balance,
		Token:    token,
	})
}

func (h *handler) spin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stake int64 `json:"stake"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	result, err := h.roulette.Spin(r.Context(), usernameFromContext(r.Context()), req.Stake)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, spinResponse{
		Outcome:      result.Outcome,
		Delta:        result.Delta,
		Balance:      result.NewBalance,
		PendingBonus: result.PendingBonus,
	})
}

func (h *handler) chooseWall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stake int64 `json:"stake"`
		Wall  int   `json:"wall"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	result, err := h.roulette.ChooseWall(r.Context(), usernameFromContext(r.Context()), req.Stake, req.Wall)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, wallChoiceResponse{
		Wall:       result.Wall,
		Multiplier: result.Multiplier,
		Delta:      result.Delta,
		Balance:    result.NewBalance,
	})
}

func (h *handler) listBets(w http.ResponseWriter, r *http.Request) {
	bets, err := h.betBook.ListOpenBets(r.Context())
	if err != nil {
		sendServiceError(w, err)
		return
	}

	response := make([]betResponse, 0, len(bets))
	for _, bet := range bets {
		response = append(response, newBetResponse(bet))
	}
	sendJSON(w, http.StatusOK, response)
}

func (h *handler) createBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	bet, err := h.betBook.CreateBet(r.Context(), usernameFromContext(r.Context()), req.Amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, newBetResponse(bet))
}

func (h *handler) acceptBet(w http.ResponseWriter, r *http.Request) {
	betID := mux.Vars(r)["id"]

	result, err := h.betBook.AcceptBet(r.Context(), betID, usernameFromContext(r.Context()))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, betResultResponse{
		BetID:   result.Bet.ID,
		Winner:  result.Winner,
		Loser:   result.Loser,
		Pot:     result.Pot,
		Won:     result.AcceptorWon,
		Balance: result.NewBalance,
	})
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.accounts.ListTransactions(r.Context(), usernameFromContext(r.Context()))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	response := make([]transactionResponse, 0, len(transactions))
	for _, tr := range transactions {
		response = append(response, transactionResponse{
			Type:      tr.Type,
			Amount:    tr.Amount,
			Balance:   tr.BalanceAfter,
			Metadata:  tr.Metadata,
			CreatedAt: tr.CreatedAt,
		})
	}
	sendJSON(w, http.StatusOK, response)
}

func (h *handler) checkWithdrawal(w http.ResponseWriter, r *http.Request) {
	status, err := h.accounts.CheckWithdrawal(r.Context(), usernameFromContext(r.Context()))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, withdrawalResponse{
		Eligible: status.Eligible,
		Balance:  status.Balance,
		Minimum:  status.Minimum,
	})
}

func (h *handler) redeemPromo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	promo, err := h.promos.Redeem(r.Context(), usernameFromContext(r.Context()), req.Code)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, promoResponse{
		Code:   promo.Code,
		Kind:   promo.Kind,
		Amount: promo.Amount,
	})
}

func (h *handler) adminCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "malformed request body", http.StatusBadRequest)
		return
	}

	if err := h.admin.Execute(r.Context(), req.Command); err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) adminAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	response := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, newAccountResponse(account))
	}
	sendJSON(w, http.StatusOK, response)
}
