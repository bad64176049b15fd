package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/model"
	"github.com/devcoelho/gobank/internal/viacep"
)

// ClientHandler handles HTTP requests for client registration and lookup
type ClientHandler struct {
	bank *bank.Bank
	cep  *viacep.Client
}

// NewClientHandler creates a new ClientHandler. The viacep client may be
// nil, in which case registration skips postal-code resolution.
func NewClientHandler(b *bank.Bank, cep *viacep.Client) *ClientHandler {
	return &ClientHandler{bank: b, cep: cep}
}

// RegisterRoutes sets up the client routes on the given router
func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/", h.List)
		r.Get("/{cpf}", h.GetByCPF)
		r.Get("/{cpf}/accounts", h.ListAccounts)
	})
}

// RegisterClientRequest is the payload for client registration. When CEP is
// set the handler resolves it to a full address before the core is invoked;
// the street fields then come from the lookup and Number/Category from the
// request.
type RegisterClientRequest struct {
	Name             string `json:"name"`
	CPF              string `json:"cpf"`
	CEP              string `json:"cep,omitempty"`
	HouseNumber      string `json:"house_number,omitempty"`
	Category         string `json:"category,omitempty"`
	LocationCategory string `json:"location_category,omitempty"`

	// Full address for callers that resolved it themselves
	Address *model.Address `json:"address,omitempty"`
}

// Register handles POST /clients
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.CPF == "" {
		writeError(w, http.StatusBadRequest, "name and cpf are required")
		return
	}

	client := &model.Client{Name: req.Name, CPF: req.CPF}

	switch {
	case req.Address != nil:
		client.Addresses = append(client.Addresses, *req.Address)
	case req.CEP != "" && h.cep != nil:
		addr, err := h.cep.Lookup(r.Context(), req.CEP)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		addr.Number = req.HouseNumber
		addr.Category = req.Category
		addr.LocationCategory = req.LocationCategory
		client.Addresses = append(client.Addresses, *addr)
	}

	added, err := h.bank.AddClient(client)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !added {
		writeError(w, http.StatusConflict, "client with this cpf already exists")
		return
	}

	log.Printf("registered client %s", client.CPF)
	writeJSON(w, http.StatusCreated, client)
}

// List handles GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients := h.bank.Clients()
	if clients == nil {
		clients = []*model.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetByCPF handles GET /clients/{cpf}
func (h *ClientHandler) GetByCPF(w http.ResponseWriter, r *http.Request) {
	client, err := h.bank.FindClientByTaxID(chi.URLParam(r, "cpf"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// ListAccounts handles GET /clients/{cpf}/accounts
func (h *ClientHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	views, err := h.bank.ViewAccountsForClient(chi.URLParam(r, "cpf"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]accountSummary, 0, len(views))
	for _, v := range views {
		out = append(out, summarize(v))
	}
	writeJSON(w, http.StatusOK, out)
}
