package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/model"
)

// AccountHandler handles HTTP requests for accounts and investments
type AccountHandler struct {
	bank *bank.Bank
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(b *bank.Bank) *AccountHandler {
	return &AccountHandler{bank: b}
}

// RegisterRoutes sets up the account routes on the given router
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{number}", h.GetByNumber)
		r.Get("/{number}/history", h.GetHistory)
		r.Post("/{number}/deposits", h.Deposit)
		r.Post("/{number}/withdrawals", h.Withdraw)
		r.Post("/{number}/investments", h.CreateInvestment)
		r.Delete("/{number}/investments/{name}", h.LiquidateInvestment)
		r.Post("/{number}/interest", h.ApplyInterest)
		r.Put("/{number}/rate", h.SetRate)
	})
}

// CreateAccountRequest is the payload for opening an account
type CreateAccountRequest struct {
	CPF  string            `json:"cpf"`
	Kind model.AccountKind `json:"kind"`
}

// accountSummary is the wire shape of an account. Balances are formatted
// to 2 decimal places at this boundary only; internal state keeps full
// precision.
type accountSummary struct {
	Number   int64             `json:"number"`
	Agency   string            `json:"agency"`
	Kind     model.AccountKind `json:"kind"`
	OwnerCPF string            `json:"owner_cpf"`
	Owner    string            `json:"owner"`
	Balance  string            `json:"balance"`
	OpenedAt time.Time         `json:"opened_at"`
	Rate     string            `json:"rate,omitempty"`
}

// investmentView is the wire shape of one named investment, valued now
type investmentView struct {
	Name         string `json:"name"`
	Principal    string `json:"principal"`
	AnnualRate   string `json:"annual_rate"`
	CurrentValue string `json:"current_value"`
}

func summarize(v model.AccountView) accountSummary {
	s := accountSummary{
		Number:   v.Number,
		Agency:   v.Agency,
		Kind:     v.Kind,
		OwnerCPF: v.OwnerCPF,
		Owner:    v.Owner,
		Balance:  v.Balance.StringFixed(2),
		OpenedAt: v.Opened,
	}
	if v.Kind == model.AccountInvestment {
		s.Rate = v.Rate.String()
	}
	return s
}

// Create handles POST /accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.bank.CreateAccount(req.CPF, req.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := h.bank.ViewAccount(account.Number())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(view))
}

// List handles GET /accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.bank.ViewAccounts()
	out := make([]accountSummary, 0, len(views))
	for _, v := range views {
		out = append(out, summarize(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetByNumber handles GET /accounts/{number}: the account extract,
// including current investment valuations
func (h *AccountHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}
	view, err := h.bank.ViewAccount(number)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type extract struct {
		accountSummary
		Investments []investmentView `json:"investments,omitempty"`
	}
	resp := extract{accountSummary: summarize(view)}

	for _, inv := range view.Investments {
		resp.Investments = append(resp.Investments, investmentView{
			Name:         inv.Name,
			Principal:    inv.Principal.StringFixed(2),
			AnnualRate:   inv.AnnualRate.String(),
			CurrentValue: inv.CurrentValue.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetHistory handles GET /accounts/{number}/history: the audit trail in
// insertion order
func (h *AccountHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}
	history, err := h.bank.HistoryOf(number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if history == nil {
		history = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, history)
}

// AmountRequest is the payload for deposits and withdrawals
type AmountRequest struct {
	Amount string `json:"amount"`
}

// Deposit handles POST /accounts/{number}/deposits
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r)
	if !ok {
		return
	}
	if err := h.bank.Deposit(number, amount); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondBalance(w, number)
}

// Withdraw handles POST /accounts/{number}/withdrawals
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r)
	if !ok {
		return
	}
	if err := h.bank.Withdraw(number, amount); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondBalance(w, number)
}

// CreateInvestmentRequest is the payload for opening a named investment
type CreateInvestmentRequest struct {
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	AnnualRate string `json:"annual_rate"`
}

// CreateInvestment handles POST /accounts/{number}/investments
func (h *AccountHandler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}

	var req CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "investment name is required")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rate, err := parseRate(req.AnnualRate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.bank.CreateInvestment(number, req.Name, amount, rate); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respondBalance(w, number)
}

// LiquidateInvestment handles DELETE /accounts/{number}/investments/{name}
func (h *AccountHandler) LiquidateInvestment(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}

	value, err := h.bank.LiquidateInvestment(number, chi.URLParam(r, "name"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"liquidated_value": value.StringFixed(2)})
}

// ApplyInterest handles POST /accounts/{number}/interest: one month's slice
// of the base rate
func (h *AccountHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}
	interest, err := h.bank.ApplyMonthlyInterest(number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"interest": interest.StringFixed(2)})
}

// SetRateRequest is the payload for updating the base annual rate
type SetRateRequest struct {
	Rate string `json:"rate"`
}

// SetRate handles PUT /accounts/{number}/rate
func (h *AccountHandler) SetRate(w http.ResponseWriter, r *http.Request) {
	number, ok := h.number(w, r)
	if !ok {
		return
	}

	var req SetRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rate, err := parseRate(req.Rate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.bank.SetRate(number, rate); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// number parses the {number} route parameter
func (h *AccountHandler) number(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "number"), 10, 64)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid account number format")
		return 0, false
	}
	return n, true
}

// amount decodes and validates an AmountRequest body
func (h *AccountHandler) amount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return decimal.Zero, false
	}
	d, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return decimal.Zero, false
	}
	return d, true
}

// respondBalance reports the account's balance after a successful operation
func (h *AccountHandler) respondBalance(w http.ResponseWriter, number int64) {
	balance, err := h.bank.BalanceOf(number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}
