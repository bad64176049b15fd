package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/model"
	"github.com/devcoelho/gobank/internal/processor"
)

// SimulationHandler handles time-passage simulation requests
type SimulationHandler struct {
	processor  *processor.PeriodProcessor
	defaultFee decimal.Decimal
}

// NewSimulationHandler creates a new SimulationHandler. defaultFee is the
// monthly maintenance fee charged when the request does not name one.
func NewSimulationHandler(p *processor.PeriodProcessor, defaultFee decimal.Decimal) *SimulationHandler {
	return &SimulationHandler{processor: p, defaultFee: defaultFee}
}

// RegisterRoutes sets up the simulation routes on the given router
func (h *SimulationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/simulations", h.Run)
}

// SimulationRequest is the payload for a period run
type SimulationRequest struct {
	Months     int    `json:"months"`
	MonthlyFee string `json:"monthly_fee,omitempty"`
}

// SimulationResponse reports the run, with fee warnings rendered as text
type SimulationResponse struct {
	Months   int                       `json:"months"`
	Changes  []processor.AccountChange `json:"changes"`
	Warnings []string                  `json:"warnings,omitempty"`
}

// Run handles POST /simulations: N months of interest on investment
// accounts and maintenance fees on simple accounts
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Months <= 0 {
		writeError(w, http.StatusBadRequest, "months must be positive")
		return
	}

	fee := h.defaultFee
	if s := strings.TrimSpace(req.MonthlyFee); s != "" {
		var err error
		fee, err = decimal.NewFromString(s)
		if err != nil || fee.IsNegative() {
			writeDomainError(w, model.ErrInvalidAmount)
			return
		}
	}

	result, err := h.processor.Run(req.Months, fee)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := SimulationResponse{Months: result.Months, Changes: result.Changes}
	for _, warning := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warning.Message())
	}
	writeJSON(w, http.StatusOK, resp)
}
