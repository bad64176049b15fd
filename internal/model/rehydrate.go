package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rehydration is the privileged restore path used only by the persistence
// codec. It trusts that the invariants held when the snapshot was written
// and therefore assigns state directly, without the live business-rule
// checks: a persisted balance is already net of its investments, so
// re-running CreateInvestment's sufficiency check here would reject valid
// snapshots. Nothing outside snapshot loading may call into this file.

// RehydrateAccount reconstructs an account exactly as persisted. The rate
// argument is ignored for simple accounts.
func RehydrateAccount(client *Client, kind AccountKind, number int64, agency string,
	balance decimal.Decimal, rate decimal.Decimal, opened time.Time, clock Clock) *Account {
	if clock == nil {
		clock = time.Now
	}
	a := &Account{
		agency:  agency,
		number:  number,
		client:  client,
		balance: balance,
		opened:  opened,
		kind:    kind,
		clock:   clock,
	}
	if kind == AccountInvestment {
		a.rate = rate
		a.investments = make(map[string]*Investment)
	}
	return a
}

// RehydrateInvestment restores a named investment without touching the
// balance or the audit trail. The persisted record carries no start
// instant, so a restored investment begins accruing again from load time.
func (a *Account) RehydrateInvestment(name string, principal, annualRate decimal.Decimal) {
	if a.investments == nil {
		a.investments = make(map[string]*Investment)
	}
	a.investments[name] = NewInvestment(name, principal, annualRate, a.clock())
}

// RehydrateEntry appends a historical entry in file order. These are facts
// that already happened, so they bypass recordEntry and do not move the
// balance.
func (a *Account) RehydrateEntry(e Entry) {
	e.Account = a.number
	a.history = append(a.history, e)
}
