// Package bank holds the client registry: registered clients keyed by tax
// id, their accounts, and the single shared account-number sequence. Its
// facade methods serialize every mutation behind one mutex, so HTTP callers
// and the period processor observe each operation atomically, including
// both sides of a transfer. Reads take the same lock and return copies
// (ViewAccount, HistoryOf, BalanceOf); the live-account accessors exist for
// the snapshot codec and tests, which run while nothing mutates.
package bank

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/devcoelho/gobank/internal/model"
)

// Sequence allocates account numbers: positive, strictly increasing, shared
// across all clients and kinds, never reset or reused. Allocation is atomic
// and independent of any account lock.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a sequence whose next value is last+1
func NewSequence(last int64) *Sequence {
	s := &Sequence{}
	s.n.Store(last)
	return s
}

// Next returns the next account number
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Advance raises the sequence floor so that future numbers exceed past.
// Snapshot loading uses it to step over persisted numbers.
func (s *Sequence) Advance(past int64) {
	for {
		cur := s.n.Load()
		if cur >= past || s.n.CompareAndSwap(cur, past) {
			return
		}
	}
}

// Bank is the client registry and the aggregate root for all accounts
type Bank struct {
	name        string
	code        string
	agency      string
	defaultRate decimal.Decimal // base annual rate stamped on new investment accounts
	clock       model.Clock
	seq         *Sequence

	mu       sync.Mutex
	clients  map[string]*model.Client
	order    []string // client CPFs in registration order
	byClient map[string][]*model.Account
	byNumber map[int64]*model.Account
	accounts []*model.Account // creation order
}

// Option customizes a Bank at construction time
type Option func(*Bank)

// WithClock injects the time source used for openings, entries and
// investment valuation
func WithClock(c model.Clock) Option {
	return func(b *Bank) { b.clock = c }
}

// WithSequence injects the account-number sequence, letting tests control
// numbering deterministically
func WithSequence(s *Sequence) Option {
	return func(b *Bank) { b.seq = s }
}

// WithAgency overrides the branch label stamped on new accounts
func WithAgency(agency string) Option {
	return func(b *Bank) { b.agency = agency }
}

// WithDefaultRate overrides the base annual rate stamped on new investment
// accounts
func WithDefaultRate(rate decimal.Decimal) Option {
	return func(b *Bank) { b.defaultRate = rate }
}

// New creates an empty bank
func New(name, code string, opts ...Option) *Bank {
	b := &Bank{
		name:        name,
		code:        code,
		agency:      model.DefaultAgency,
		defaultRate: model.DefaultBaseRate,
		clock:       time.Now,
		seq:         NewSequence(0),
		clients:     make(map[string]*model.Client),
		byClient:    make(map[string][]*model.Account),
		byNumber:    make(map[int64]*model.Account),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the bank name
func (b *Bank) Name() string { return b.name }

// Code returns the bank code
func (b *Bank) Code() string { return b.code }

// Clock returns the bank's time source
func (b *Bank) Clock() model.Clock { return b.clock }

// AddClient registers a client. A duplicate tax id is not an error: the
// registration is refused and false is returned, so callers can treat
// re-registration as a no-op they detect via the return value.
func (b *Bank) AddClient(c *model.Client) (bool, error) {
	if c == nil || c.CPF == "" {
		return false, model.ErrInvalidClient
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.clients[c.CPF]; exists {
		return false, nil
	}
	b.clients[c.CPF] = c
	b.order = append(b.order, c.CPF)
	b.byClient[c.CPF] = nil
	return true, nil
}

// CreateAccount opens an account of the requested kind for a registered
// client and assigns it the next number from the shared sequence
func (b *Bank) CreateAccount(cpf string, kind model.AccountKind) (*model.Account, error) {
	if _, ok := model.ParseAccountKind(string(kind)); !ok {
		return nil, model.ErrUnsupportedAccountKind
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	client, ok := b.clients[cpf]
	if !ok {
		return nil, model.ErrUnknownClient
	}
	a, err := model.NewAccount(client, kind, b.seq.Next(), b.agency, b.clock)
	if err != nil {
		return nil, err
	}
	if kind == model.AccountInvestment {
		if err := a.SetRate(b.defaultRate); err != nil {
			return nil, err
		}
	}
	b.register(a)
	return a, nil
}

// register indexes an account; callers hold b.mu
func (b *Bank) register(a *model.Account) {
	cpf := a.Client().CPF
	b.byClient[cpf] = append(b.byClient[cpf], a)
	b.byNumber[a.Number()] = a
	b.accounts = append(b.accounts, a)
}

// Clients returns all registered clients in registration order
func (b *Bank) Clients() []*model.Client {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*model.Client, 0, len(b.order))
	for _, cpf := range b.order {
		out = append(out, b.clients[cpf])
	}
	return out
}

// FindClientByTaxID looks up a client by CPF
func (b *Bank) FindClientByTaxID(cpf string) (*model.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.clients[cpf]
	if !ok {
		return nil, model.ErrUnknownClient
	}
	return c, nil
}

// FindAccount looks up an account by number. The returned account is live
// shared state; reading it is only safe while nothing mutates concurrently.
// Request handlers use ViewAccount, HistoryOf and BalanceOf instead.
func (b *Bank) FindAccount(number int64) (*model.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findAccount(number)
}

// findAccount is FindAccount without the lock; callers hold b.mu
func (b *Bank) findAccount(number int64) (*model.Account, error) {
	a, ok := b.byNumber[number]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return a, nil
}

// Accounts returns a copy of the full account list in creation order. Like
// FindAccount it hands out live accounts, for the snapshot codec's use once
// serving has stopped.
func (b *Bank) Accounts() []*model.Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*model.Account, len(b.accounts))
	copy(out, b.accounts)
	return out
}

// ViewAccount returns a point-in-time copy of the numbered account's
// observable state, taken under the registry lock. Investments are valued
// at the bank clock's current instant.
func (b *Bank) ViewAccount(number int64) (model.AccountView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return model.AccountView{}, err
	}
	return a.Snapshot(b.clock()), nil
}

// ViewAccounts returns copies of every account's state in creation order
func (b *Bank) ViewAccounts() []model.AccountView {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.clock()
	out := make([]model.AccountView, 0, len(b.accounts))
	for _, a := range b.accounts {
		out = append(out, a.Snapshot(now))
	}
	return out
}

// ViewAccountsForClient returns copies of the client's accounts' state
func (b *Bank) ViewAccountsForClient(cpf string) ([]model.AccountView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[cpf]; !ok {
		return nil, model.ErrUnknownClient
	}
	now := b.clock()
	accts := b.byClient[cpf]
	out := make([]model.AccountView, 0, len(accts))
	for _, a := range accts {
		out = append(out, a.Snapshot(now))
	}
	return out, nil
}

// HistoryOf returns a copy of the numbered account's entry history
func (b *Bank) HistoryOf(number int64) ([]model.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return nil, err
	}
	return a.History(), nil
}

// BalanceOf returns the numbered account's current balance
func (b *Bank) BalanceOf(number int64) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance(), nil
}

// Deposit credits the numbered account
func (b *Bank) Deposit(number int64, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return err
	}
	return a.Deposit(amount)
}

// Withdraw debits the numbered account
func (b *Bank) Withdraw(number int64, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return err
	}
	return a.Withdraw(amount)
}

// Transfer moves amount between two accounts inside one critical section.
// Self-transfer is rejected here, before the account operation runs.
func (b *Bank) Transfer(from, to int64, amount decimal.Decimal) error {
	if from == to {
		return model.ErrSameAccount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	src, err := b.findAccount(from)
	if err != nil {
		return err
	}
	dest, err := b.findAccount(to)
	if err != nil {
		return model.ErrInvalidAccount
	}
	return src.TransferTo(amount, dest)
}

// ChargeFee debits a maintenance fee from the numbered account
func (b *Bank) ChargeFee(number int64, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return err
	}
	return a.ChargeFee(amount)
}

// CreateInvestment moves amount from the account's balance into a new named
// investment
func (b *Bank) CreateInvestment(number int64, name string, amount, rate decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return err
	}
	return a.CreateInvestment(name, amount, rate)
}

// LiquidateInvestment ends a named investment and returns its value to the
// account's balance
func (b *Bank) LiquidateInvestment(number int64, name string) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return decimal.Zero, err
	}
	return a.LiquidateInvestment(name)
}

// ApplyMonthlyInterest credits one month of base-rate interest
func (b *Bank) ApplyMonthlyInterest(number int64) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return decimal.Zero, err
	}
	return a.ApplyMonthlyInterest()
}

// SetRate updates an investment account's base annual rate
func (b *Bank) SetRate(number int64, rate decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, err := b.findAccount(number)
	if err != nil {
		return err
	}
	return a.SetRate(rate)
}

// RehydrateClient registers a client from a snapshot. Unlike AddClient a
// duplicate is simply kept as-is, since replays of the same snapshot must
// be harmless.
func (b *Bank) RehydrateClient(c *model.Client) {
	if c == nil || c.CPF == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.clients[c.CPF]; exists {
		return
	}
	b.clients[c.CPF] = c
	b.order = append(b.order, c.CPF)
}

// RehydrateAccount indexes an account restored by the persistence codec and
// advances the shared sequence past its number. The owning client must
// already be registered.
func (b *Bank) RehydrateAccount(a *model.Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[a.Client().CPF]; !ok {
		return model.ErrUnknownClient
	}
	if _, exists := b.byNumber[a.Number()]; exists {
		return model.ErrInvalidAccount
	}
	b.register(a)
	b.seq.Advance(a.Number())
	return nil
}
