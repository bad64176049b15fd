// Package processor runs multi-month period closings: base-rate interest on
// investment accounts and maintenance fees on simple accounts.
package processor

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/model"
)

// PeriodProcessor applies the passage of N months to every account in the
// bank. Named investments need no stepping here: their value derives from
// elapsed wall-clock time.
type PeriodProcessor struct {
	bank *bank.Bank
}

// NewPeriodProcessor creates a new PeriodProcessor
func NewPeriodProcessor(b *bank.Bank) *PeriodProcessor {
	return &PeriodProcessor{bank: b}
}

// AccountChange reports one account's balance movement over the run
type AccountChange struct {
	Account int64             `json:"account"`
	Kind    model.AccountKind `json:"kind"`
	Before  decimal.Decimal   `json:"before"`
	After   decimal.Decimal   `json:"after"`
}

// FeeWarning reports a month in which an account could not cover its
// maintenance fee. Charging that account stops at the first warning; the
// remaining months are not silently retried.
type FeeWarning struct {
	Account int64 `json:"account"`
	Month   int   `json:"month"`
	Err     error `json:"-"`
}

// Message renders the warning for callers that only want text
func (w FeeWarning) Message() string {
	return fmt.Sprintf("account #%d: %v on month %d", w.Account, w.Err, w.Month)
}

// Result summarizes a period run
type Result struct {
	Months   int             `json:"months"`
	Changes  []AccountChange `json:"changes"`
	Warnings []FeeWarning    `json:"warnings,omitempty"`
}

// Run applies months of interest and fees across all accounts. Investment
// accounts receive one ApplyMonthlyInterest call per month; simple accounts
// are charged monthlyFee once per month until the first insufficiency,
// which is reported as a typed warning rather than failing the run. A zero
// fee skips charging entirely.
func (p *PeriodProcessor) Run(months int, monthlyFee decimal.Decimal) (*Result, error) {
	if months <= 0 {
		return nil, fmt.Errorf("months must be positive, got %d", months)
	}
	if monthlyFee.IsNegative() {
		return nil, model.ErrInvalidAmount
	}

	result := &Result{Months: months}

	for _, v := range p.bank.ViewAccounts() {
		change := AccountChange{
			Account: v.Number,
			Kind:    v.Kind,
			Before:  v.Balance,
		}

		switch v.Kind {
		case model.AccountInvestment:
			for i := 0; i < months; i++ {
				if _, err := p.bank.ApplyMonthlyInterest(v.Number); err != nil {
					return nil, fmt.Errorf("interest on account #%d: %w", v.Number, err)
				}
			}
		case model.AccountSimple:
			if monthlyFee.IsZero() {
				break
			}
			for i := 0; i < months; i++ {
				err := p.bank.ChargeFee(v.Number, monthlyFee)
				if err == nil {
					continue
				}
				if errors.Is(err, model.ErrInsufficientBalance) {
					result.Warnings = append(result.Warnings, FeeWarning{
						Account: v.Number,
						Month:   i + 1,
						Err:     err,
					})
					break
				}
				return nil, fmt.Errorf("fee on account #%d: %w", v.Number, err)
			}
		}

		after, err := p.bank.BalanceOf(v.Number)
		if err != nil {
			return nil, fmt.Errorf("balance of account #%d: %w", v.Number, err)
		}
		change.After = after
		result.Changes = append(result.Changes, change)
	}

	return result, nil
}
