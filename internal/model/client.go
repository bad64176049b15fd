package model

import "strings"

// Client is a registered bank client. The CPF (Brazilian tax id) is the
// registry primary key and is immutable once an account is assigned.
type Client struct {
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	Addresses []Address `json:"addresses,omitempty"`
}

// Address is a client address. The core only stores and round-trips these
// fields; resolving a postal code into them is the registration layer's job.
type Address struct {
	Street           string `json:"street"`
	Number           string `json:"number"`
	Complement       string `json:"complement,omitempty"`
	Neighborhood     string `json:"neighborhood"`
	City             string `json:"city"`
	State            State  `json:"state"`
	CEP              string `json:"cep"`
	Category         string `json:"category,omitempty"`          // e.g. RESIDENTIAL, COMMERCIAL
	LocationCategory string `json:"location_category,omitempty"` // e.g. HOME, WORK
}

// Formatted renders the address as a single human-readable line
func (a Address) Formatted() string {
	var b strings.Builder
	b.WriteString(a.Street)
	if a.Number != "" {
		b.WriteString(", ")
		b.WriteString(a.Number)
	}
	if a.Complement != "" {
		b.WriteString(", ")
		b.WriteString(a.Complement)
	}
	if a.Neighborhood != "" {
		b.WriteString(" - ")
		b.WriteString(a.Neighborhood)
	}
	if a.City != "" {
		b.WriteString(", ")
		b.WriteString(a.City)
	}
	if a.State != "" {
		b.WriteString("/")
		b.WriteString(string(a.State))
	}
	if a.CEP != "" {
		b.WriteString(" - CEP: ")
		b.WriteString(a.CEP)
	}
	return b.String()
}

// State is a Brazilian state code (UF)
type State string

var stateNames = map[State]string{
	"AC": "Acre",
	"AL": "Alagoas",
	"AP": "Amapá",
	"AM": "Amazonas",
	"BA": "Bahia",
	"CE": "Ceará",
	"DF": "Distrito Federal",
	"ES": "Espírito Santo",
	"GO": "Goiás",
	"MA": "Maranhão",
	"MT": "Mato Grosso",
	"MS": "Mato Grosso do Sul",
	"MG": "Minas Gerais",
	"PA": "Pará",
	"PB": "Paraíba",
	"PR": "Paraná",
	"PE": "Pernambuco",
	"PI": "Piauí",
	"RJ": "Rio de Janeiro",
	"RN": "Rio Grande do Norte",
	"RS": "Rio Grande do Sul",
	"RO": "Rondônia",
	"RR": "Roraima",
	"SC": "Santa Catarina",
	"SP": "São Paulo",
	"SE": "Sergipe",
	"TO": "Tocantins",
}

// ParseState maps a UF abbreviation to a State; ok is false for unknown codes
func ParseState(abbreviation string) (State, bool) {
	s := State(strings.ToUpper(strings.TrimSpace(abbreviation)))
	_, ok := stateNames[s]
	if !ok {
		return "", false
	}
	return s, true
}

// FullName returns the state's full name, or "" for an unknown code
func (s State) FullName() string {
	return stateNames[s]
}
