package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock supplies the current time. Accounts take an injected clock so
// interest math and entry timestamps are deterministic in tests.
type Clock func() time.Time

// AccountKind discriminates the two account variants
type AccountKind string

const (
	AccountSimple     AccountKind = "SIMPLE"
	AccountInvestment AccountKind = "INVESTMENT"
)

// ParseAccountKind maps a persisted kind label to an AccountKind
func ParseAccountKind(s string) (AccountKind, bool) {
	switch k := AccountKind(s); k {
	case AccountSimple, AccountInvestment:
		return k, true
	}
	return "", false
}

// DefaultAgency is the branch label assigned to accounts unless overridden
const DefaultAgency = "Mogi Guacu"

// DefaultBaseRate is the base annual rate a new investment account starts
// with unless the registry stamps another at creation
var DefaultBaseRate = decimal.NewFromFloat(0.05)

// Account holds a balance, an append-only entry history and, for the
// investment kind, a base annual rate plus a set of named investments.
// It is a tagged union over {SIMPLE, INVESTMENT}: investment fields are
// meaningful only when kind is AccountInvestment.
//
// Every operation validates before it mutates; a returned error means no
// state changed. Operations are not safe for concurrent use: callers
// serialize access (the registry facade holds one mutex across each
// operation, including both sides of a transfer).
type Account struct {
	agency      string
	number      int64
	client      *Client
	balance     decimal.Decimal
	opened      time.Time
	kind        AccountKind
	rate        decimal.Decimal
	investments map[string]*Investment
	history     []Entry
	clock       Clock
}

// NewAccount creates an empty account of the given kind for a registered
// client. The number comes from the registry's shared sequence. A nil clock
// defaults to time.Now.
func NewAccount(client *Client, kind AccountKind, number int64, agency string, clock Clock) (*Account, error) {
	if client == nil || client.CPF == "" {
		return nil, ErrInvalidClient
	}
	if _, ok := ParseAccountKind(string(kind)); !ok {
		return nil, ErrUnsupportedAccountKind
	}
	if clock == nil {
		clock = time.Now
	}
	if agency == "" {
		agency = DefaultAgency
	}
	a := &Account{
		agency:  agency,
		number:  number,
		client:  client,
		balance: decimal.Zero,
		opened:  clock(),
		kind:    kind,
		clock:   clock,
	}
	if kind == AccountInvestment {
		a.rate = DefaultBaseRate
		a.investments = make(map[string]*Investment)
	}
	return a, nil
}

// Agency returns the branch label
func (a *Account) Agency() string { return a.agency }

// Number returns the globally unique account number
func (a *Account) Number() int64 { return a.number }

// Client returns the owning client
func (a *Account) Client() *Client { return a.client }

// Balance returns the current spendable balance
func (a *Account) Balance() decimal.Decimal { return a.balance }

// OpenedAt returns the opening timestamp, set once at creation
func (a *Account) OpenedAt() time.Time { return a.opened }

// Kind returns the account variant
func (a *Account) Kind() AccountKind { return a.kind }

// Rate returns the base annual interest rate. Zero for simple accounts.
func (a *Account) Rate() decimal.Decimal { return a.rate }

// IsValid reports whether the account can take part in operations
func (a *Account) IsValid() bool {
	return a.agency != "" && a.client != nil && a.number > 0
}

// History returns a copy of the entry history in insertion order
func (a *Account) History() []Entry {
	out := make([]Entry, len(a.history))
	copy(out, a.history)
	return out
}

// Investments returns a copy of the named-investment map. Empty for simple
// accounts.
func (a *Account) Investments() map[string]*Investment {
	out := make(map[string]*Investment, len(a.investments))
	for name, inv := range a.investments {
		out[name] = inv
	}
	return out
}

// AccountView is a point-in-time copy of an account's observable state.
// Registry read paths hand these out instead of live accounts, so callers
// never touch mutable fields outside the registry lock.
type AccountView struct {
	Number      int64
	Agency      string
	Kind        AccountKind
	OwnerCPF    string
	Owner       string
	Balance     decimal.Decimal
	Opened      time.Time
	Rate        decimal.Decimal
	Investments []InvestmentView
}

// InvestmentView is one named investment inside an AccountView, valued at
// the snapshot instant
type InvestmentView struct {
	Name         string
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
	CurrentValue decimal.Decimal
}

// Snapshot copies the account's observable state, valuing investments at
// the given instant. Investments come out sorted by name.
func (a *Account) Snapshot(at time.Time) AccountView {
	v := AccountView{
		Number:   a.number,
		Agency:   a.agency,
		Kind:     a.kind,
		OwnerCPF: a.client.CPF,
		Owner:    a.client.Name,
		Balance:  a.balance,
		Opened:   a.opened,
		Rate:     a.rate,
	}
	for _, inv := range a.investments {
		v.Investments = append(v.Investments, InvestmentView{
			Name:         inv.name,
			Principal:    inv.principal,
			AnnualRate:   inv.rate,
			CurrentValue: inv.ValueAt(at),
		})
	}
	sort.Slice(v.Investments, func(i, j int) bool {
		return v.Investments[i].Name < v.Investments[j].Name
	})
	return v
}

// Deposit credits the balance. There is no upper bound.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	a.recordEntry(EntryDeposit, amount, 0)
	return nil
}

// Withdraw debits the balance, never below zero
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientBalance
	}
	a.balance = a.balance.Sub(amount)
	a.recordEntry(EntryWithdrawal, amount.Neg(), 0)
	return nil
}

// TransferTo moves amount from this account to dest. All validation runs
// before either balance changes, so a returned error means neither account
// moved. On success the source gains exactly one TRANSFER entry referencing
// dest and the destination gains one DEPOSIT entry. Rejecting self-transfer
// is the caller layer's job and happens before this method runs.
func (a *Account) TransferTo(amount decimal.Decimal, dest *Account) error {
	if dest == nil || !dest.IsValid() {
		return ErrInvalidAccount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientBalance
	}

	a.balance = a.balance.Sub(amount)
	dest.balance = dest.balance.Add(amount)

	a.recordEntry(EntryTransfer, amount.Neg(), dest.number)
	dest.recordEntry(EntryDeposit, amount, 0)
	return nil
}

// ChargeFee debits a maintenance fee and records a single FEE entry
func (a *Account) ChargeFee(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientBalance
	}
	a.balance = a.balance.Sub(amount)
	a.recordEntry(EntryFee, amount.Neg(), 0)
	return nil
}

// SetRate updates the base annual rate of an investment account
func (a *Account) SetRate(rate decimal.Decimal) error {
	if a.kind != AccountInvestment {
		return ErrNotInvestmentAccount
	}
	if rate.IsNegative() {
		return ErrNegativeRate
	}
	a.rate = rate
	return nil
}

// CreateInvestment moves amount out of the spendable balance into a new
// named investment starting now. Duplicate names are rejected rather than
// silently overwritten, so an existing principal can never be lost.
func (a *Account) CreateInvestment(name string, amount, annualRate decimal.Decimal) error {
	if a.kind != AccountInvestment {
		return ErrNotInvestmentAccount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientBalance
	}
	if annualRate.IsNegative() {
		return ErrNegativeRate
	}
	if _, exists := a.investments[name]; exists {
		return ErrDuplicateInvestment
	}

	a.balance = a.balance.Sub(amount)
	a.investments[name] = NewInvestment(name, amount, annualRate, a.clock())
	// The money leaves the spendable balance, so the trail shows a withdrawal.
	a.recordEntry(EntryWithdrawal, amount.Neg(), 0)
	return nil
}

// LiquidateInvestment removes the named investment and returns its full
// derived value to the spendable balance. The trail records a DEPOSIT for
// the whole value and, when interest accrued, a separate INTEREST entry for
// exactly the gain.
func (a *Account) LiquidateInvestment(name string) (decimal.Decimal, error) {
	inv, ok := a.investments[name]
	if !ok {
		return decimal.Zero, ErrInvestmentNotFound
	}

	value := inv.ValueAt(a.clock())
	a.balance = a.balance.Add(value)
	a.recordEntry(EntryDeposit, value, 0)

	if gain := value.Sub(inv.Principal()); gain.IsPositive() {
		a.recordEntry(EntryInterest, gain, 0)
	}

	delete(a.investments, name)
	return value, nil
}

// ApplyMonthlyInterest credits one month's slice of the base annual rate to
// the spendable balance. Named investments are untouched: their value is
// derived from elapsed wall-clock time, not from call counts. The caller is
// trusted to invoke this once per simulated month.
func (a *Account) ApplyMonthlyInterest() (decimal.Decimal, error) {
	if a.kind != AccountInvestment {
		return decimal.Zero, ErrNotInvestmentAccount
	}
	interest := a.balance.Mul(a.rate).Div(decimal.NewFromInt(12))
	a.balance = a.balance.Add(interest)
	a.recordEntry(EntryInterest, interest, 0)
	return interest, nil
}

// recordEntry unconditionally appends to the audit trail. Fee and interest
// application come through here; live deposits and withdrawals do too, after
// their own validation.
func (a *Account) recordEntry(t EntryType, amount decimal.Decimal, destination int64) {
	a.history = append(a.history, Entry{
		ID:          uuid.New(),
		Type:        t,
		Amount:      amount,
		Time:        a.clock(),
		Account:     a.number,
		Destination: destination,
	})
}
