package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/model"
	"github.com/devcoelho/gobank/internal/viacep"
)

// Helper functions for HTTP responses

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeDomainError translates a typed core failure into an HTTP status.
// The ledger core reports business-rule violations synchronously; this is
// where they become user-visible messages.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrUnknownClient),
		errors.Is(err, model.ErrInvestmentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInsufficientBalance),
		errors.Is(err, model.ErrDuplicateInvestment):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidAccount),
		errors.Is(err, model.ErrSameAccount),
		errors.Is(err, model.ErrUnsupportedAccountKind),
		errors.Is(err, model.ErrNotInvestmentAccount),
		errors.Is(err, model.ErrNegativeRate),
		errors.Is(err, model.ErrInvalidClient),
		errors.Is(err, viacep.ErrInvalidCEP):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, viacep.ErrCEPNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseAmount validates a positive decimal amount sent as a JSON string
func parseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, model.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, model.ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, model.ErrInvalidAmount
	}
	return d, nil
}

// parseRate validates a non-negative decimal rate sent as a JSON string
func parseRate(rate string) (decimal.Decimal, error) {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return decimal.Zero, model.ErrNegativeRate
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return decimal.Zero, model.ErrNegativeRate
	}
	if d.IsNegative() {
		return decimal.Zero, model.ErrNegativeRate
	}
	return d, nil
}
