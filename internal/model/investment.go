package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const hoursPerYear = 24 * 365

// Investment is a principal amount accruing compound interest independently
// of the owning account's main balance. Principal, rate and start are fixed
// at creation; the current value is always derived from elapsed time, never
// stored.
type Investment struct {
	name      string
	principal decimal.Decimal
	rate      decimal.Decimal
	start     time.Time
}

// NewInvestment creates an investment starting at the given instant
func NewInvestment(name string, principal, rate decimal.Decimal, start time.Time) *Investment {
	return &Investment{name: name, principal: principal, rate: rate, start: start}
}

// Name returns the investment name, unique within its account
func (i *Investment) Name() string { return i.name }

// Principal returns the amount committed at creation
func (i *Investment) Principal() decimal.Decimal { return i.principal }

// Rate returns the annual compound interest rate as a decimal fraction
func (i *Investment) Rate() decimal.Decimal { return i.rate }

// StartedAt returns the instant the investment began accruing
func (i *Investment) StartedAt() time.Time { return i.start }

// ValueAt computes principal * (1+rate)^years for the fractional years
// elapsed between start and t. Before start the value is the principal.
// The exponentiation runs in float64; additive money math elsewhere stays
// in decimal.
func (i *Investment) ValueAt(t time.Time) decimal.Decimal {
	years := t.Sub(i.start).Hours() / hoursPerYear
	if years <= 0 {
		return i.principal
	}
	factor := math.Pow(1+i.rate.InexactFloat64(), years)
	return i.principal.Mul(decimal.NewFromFloat(factor))
}
