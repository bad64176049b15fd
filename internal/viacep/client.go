// Package viacep resolves Brazilian postal codes (CEPs) to address records
// through a ViaCEP-style HTTP API. The ledger core never calls this; the
// registration layer does, before handing the resolved address to the
// registry.
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/devcoelho/gobank/internal/model"
)

// DefaultBaseURL is the public ViaCEP endpoint
const DefaultBaseURL = "https://viacep.com.br"

var (
	// ErrInvalidCEP means the input did not normalize to 8 digits
	ErrInvalidCEP = errors.New("cep must have exactly 8 digits")
	// ErrCEPNotFound means the API does not know the code
	ErrCEPNotFound = errors.New("cep not found")
)

// Client is a ViaCEP API client
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL; empty means DefaultBaseURL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// response mirrors the ViaCEP JSON payload
type response struct {
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        bool   `json:"erro"`
}

// Lookup resolves a CEP to a best-effort address. The input may carry
// punctuation ("01311-000"); anything that does not normalize to 8 digits
// fails with ErrInvalidCEP. The returned address leaves Number empty: that
// is the caller's job to provide.
func (c *Client) Lookup(ctx context.Context, cep string) (*model.Address, error) {
	numeric := normalize(cep)
	if len(numeric) != 8 {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, numeric)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building cep request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cep lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cep lookup: unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding cep response: %w", err)
	}
	if body.Erro {
		return nil, ErrCEPNotFound
	}

	state, _ := model.ParseState(body.UF)
	return &model.Address{
		Street:       body.Logradouro,
		Complement:   body.Complemento,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        state,
		CEP:          format(numeric),
	}, nil
}

// normalize strips everything but digits
func normalize(cep string) string {
	var b strings.Builder
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// format renders an 8-digit CEP as 00000-000
func format(numeric string) string {
	return numeric[:5] + "-" + numeric[5:]
}
