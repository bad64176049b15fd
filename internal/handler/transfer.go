package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/model"
)

// TransferHandler handles HTTP requests for transfers between accounts
type TransferHandler struct {
	bank *bank.Bank
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(b *bank.Bank) *TransferHandler {
	return &TransferHandler{bank: b}
}

// RegisterRoutes sets up the transfer routes on the given router
func (h *TransferHandler) RegisterRoutes(r chi.Router) {
	r.Post("/transfers", h.CreateTransfer)
}

// CreateTransferRequest is the payload for moving money between accounts
type CreateTransferRequest struct {
	FromAccount int64  `json:"from_account"`
	ToAccount   int64  `json:"to_account"`
	Amount      string `json:"amount"`
}

// Validate checks the transfer request before it reaches the registry.
// Self-transfer is rejected here, in the caller layer, before any account
// operation can run.
func (r CreateTransferRequest) Validate() error {
	if r.FromAccount <= 0 {
		return model.ErrAccountNotFound
	}
	if r.ToAccount <= 0 {
		return model.ErrInvalidAccount
	}
	if r.FromAccount == r.ToAccount {
		return model.ErrSameAccount
	}
	return nil
}

// CreateTransfer handles POST /transfers
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.bank.Transfer(req.FromAccount, req.ToAccount, amount); err != nil {
		writeDomainError(w, err)
		return
	}

	balance, err := h.bank.BalanceOf(req.FromAccount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"balance": balance.StringFixed(2),
	})
}
