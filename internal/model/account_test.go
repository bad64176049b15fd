package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func newTestAccount(t *testing.T, kind AccountKind, number int64) *Account {
	t.Helper()
	client := &Client{Name: "João Silva", CPF: "123.456.789-00"}
	a, err := NewAccount(client, kind, number, "", testClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}
	return a
}

func mustDeposit(t *testing.T, a *Account, amount string) {
	t.Helper()
	if err := a.Deposit(decimal.RequireFromString(amount)); err != nil {
		t.Fatalf("Deposit(%s) error = %v", amount, err)
	}
}

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name    string
		client  *Client
		kind    AccountKind
		wantErr error
	}{
		{
			name:   "simple account",
			client: &Client{Name: "Maria", CPF: "987.654.321-00"},
			kind:   AccountSimple,
		},
		{
			name:   "investment account",
			client: &Client{Name: "Maria", CPF: "987.654.321-00"},
			kind:   AccountInvestment,
		},
		{
			name:    "nil client",
			client:  nil,
			kind:    AccountSimple,
			wantErr: ErrInvalidClient,
		},
		{
			name:    "client without cpf",
			client:  &Client{Name: "Maria"},
			kind:    AccountSimple,
			wantErr: ErrInvalidClient,
		},
		{
			name:    "unknown kind",
			client:  &Client{Name: "Maria", CPF: "987.654.321-00"},
			kind:    "CHECKING",
			wantErr: ErrUnsupportedAccountKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAccount(tt.client, tt.kind, 1, "", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewAccount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !a.Balance().IsZero() {
				t.Errorf("new account balance = %s, want 0", a.Balance())
			}
			if a.Agency() != DefaultAgency {
				t.Errorf("agency = %q, want %q", a.Agency(), DefaultAgency)
			}
			if !a.IsValid() {
				t.Error("new account should be valid")
			}
		})
	}
}

func TestAccount_Deposit(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "valid amount", amount: "100"},
		{name: "small amount", amount: "0.01"},
		{name: "zero amount", amount: "0", wantErr: ErrInvalidAmount},
		{name: "negative amount", amount: "-50", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccount(t, AccountSimple, 1)
			err := a.Deposit(decimal.RequireFromString(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Deposit(%s) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if !a.Balance().IsZero() || len(a.History()) != 0 {
					t.Error("failed deposit must leave state unchanged")
				}
				return
			}
			if got := a.Balance().String(); got != decimal.RequireFromString(tt.amount).String() {
				t.Errorf("balance = %s, want %s", got, tt.amount)
			}
			history := a.History()
			if len(history) != 1 {
				t.Fatalf("history length = %d, want 1", len(history))
			}
			if history[0].Type != EntryDeposit {
				t.Errorf("entry type = %s, want %s", history[0].Type, EntryDeposit)
			}
			if !history[0].Amount.Equal(decimal.RequireFromString(tt.amount)) {
				t.Errorf("entry amount = %s, want +%s", history[0].Amount, tt.amount)
			}
		})
	}
}

func TestAccount_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		amount      string
		wantErr     error
		wantBalance string
	}{
		{name: "full withdrawal", balance: "100", amount: "100", wantBalance: "0"},
		{name: "partial withdrawal", balance: "100", amount: "40", wantBalance: "60"},
		{name: "insufficient balance", balance: "100", amount: "100.01", wantErr: ErrInsufficientBalance, wantBalance: "100"},
		{name: "zero amount", balance: "100", amount: "0", wantErr: ErrInvalidAmount, wantBalance: "100"},
		{name: "negative amount", balance: "100", amount: "-1", wantErr: ErrInvalidAmount, wantBalance: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccount(t, AccountSimple, 1)
			mustDeposit(t, a, tt.balance)
			entriesBefore := len(a.History())

			err := a.Withdraw(decimal.RequireFromString(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Withdraw(%s) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
			if got := a.Balance().String(); got != tt.wantBalance {
				t.Errorf("balance = %s, want %s", got, tt.wantBalance)
			}
			if a.Balance().IsNegative() {
				t.Error("balance must never go negative")
			}

			history := a.History()
			if tt.wantErr != nil {
				if len(history) != entriesBefore {
					t.Error("failed withdrawal must not append to history")
				}
				return
			}
			last := history[len(history)-1]
			if last.Type != EntryWithdrawal {
				t.Errorf("entry type = %s, want %s", last.Type, EntryWithdrawal)
			}
			if !last.Amount.Equal(decimal.RequireFromString(tt.amount).Neg()) {
				t.Errorf("entry amount = %s, want -%s", last.Amount, tt.amount)
			}
		})
	}
}

func TestAccount_TransferTo(t *testing.T) {
	t.Run("conserves total balance", func(t *testing.T) {
		src := newTestAccount(t, AccountSimple, 1)
		dest := newTestAccount(t, AccountSimple, 2)
		mustDeposit(t, src, "700")
		mustDeposit(t, dest, "500")

		if err := src.TransferTo(decimal.NewFromInt(300), dest); err != nil {
			t.Fatalf("TransferTo() error = %v", err)
		}

		if got := src.Balance().String(); got != "400" {
			t.Errorf("source balance = %s, want 400", got)
		}
		if got := dest.Balance().String(); got != "800" {
			t.Errorf("destination balance = %s, want 800", got)
		}
		if total := src.Balance().Add(dest.Balance()); !total.Equal(decimal.NewFromInt(1200)) {
			t.Errorf("total balance = %s, want 1200", total)
		}

		srcHistory := src.History()
		last := srcHistory[len(srcHistory)-1]
		if last.Type != EntryTransfer {
			t.Errorf("source entry type = %s, want %s", last.Type, EntryTransfer)
		}
		if last.Destination != dest.Number() {
			t.Errorf("transfer destination = %d, want %d", last.Destination, dest.Number())
		}
		if !last.Amount.Equal(decimal.NewFromInt(-300)) {
			t.Errorf("transfer amount = %s, want -300", last.Amount)
		}

		destHistory := dest.History()
		destLast := destHistory[len(destHistory)-1]
		if destLast.Type != EntryDeposit {
			t.Errorf("destination entry type = %s, want %s", destLast.Type, EntryDeposit)
		}
		if !destLast.Amount.Equal(decimal.NewFromInt(300)) {
			t.Errorf("destination amount = %s, want +300", destLast.Amount)
		}
	})

	t.Run("no transfer entry retagging", func(t *testing.T) {
		// A transfer appends exactly one TRANSFER entry on the source;
		// no intermediate WITHDRAWAL is ever visible.
		src := newTestAccount(t, AccountSimple, 1)
		dest := newTestAccount(t, AccountSimple, 2)
		mustDeposit(t, src, "100")

		if err := src.TransferTo(decimal.NewFromInt(100), dest); err != nil {
			t.Fatalf("TransferTo() error = %v", err)
		}
		for _, e := range src.History() {
			if e.Type == EntryWithdrawal {
				t.Error("transfer must not leave a WITHDRAWAL entry on the source")
			}
		}
	})

	tests := []struct {
		name    string
		balance string
		amount  string
		nilDest bool
		wantErr error
	}{
		{name: "nil destination", balance: "100", amount: "50", nilDest: true, wantErr: ErrInvalidAccount},
		{name: "zero amount", balance: "100", amount: "0", wantErr: ErrInvalidAmount},
		{name: "insufficient balance", balance: "100", amount: "101", wantErr: ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestAccount(t, AccountSimple, 1)
			mustDeposit(t, src, tt.balance)
			var dest *Account
			if !tt.nilDest {
				dest = newTestAccount(t, AccountSimple, 2)
			}

			err := src.TransferTo(decimal.RequireFromString(tt.amount), dest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("TransferTo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := src.Balance().String(); got != tt.balance {
				t.Errorf("failed transfer changed source balance to %s", got)
			}
			if dest != nil && !dest.Balance().IsZero() {
				t.Errorf("failed transfer changed destination balance to %s", dest.Balance())
			}
		})
	}
}

func TestAccount_ChargeFee(t *testing.T) {
	a := newTestAccount(t, AccountSimple, 1)
	mustDeposit(t, a, "10")

	if err := a.ChargeFee(decimal.RequireFromString("2.00")); err != nil {
		t.Fatalf("ChargeFee() error = %v", err)
	}
	if got := a.Balance().String(); got != "8" {
		t.Errorf("balance = %s, want 8", got)
	}
	history := a.History()
	last := history[len(history)-1]
	if last.Type != EntryFee {
		t.Errorf("entry type = %s, want %s", last.Type, EntryFee)
	}
	if !last.Amount.Equal(decimal.RequireFromString("-2.00")) {
		t.Errorf("entry amount = %s, want -2.00", last.Amount)
	}

	if err := a.ChargeFee(decimal.NewFromInt(9)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("ChargeFee() error = %v, want ErrInsufficientBalance", err)
	}
	if got := a.Balance().String(); got != "8" {
		t.Errorf("failed fee changed balance to %s", got)
	}
}

func TestAccount_SetRate(t *testing.T) {
	simple := newTestAccount(t, AccountSimple, 1)
	if err := simple.SetRate(decimal.NewFromFloat(0.1)); !errors.Is(err, ErrNotInvestmentAccount) {
		t.Errorf("SetRate on simple account error = %v, want ErrNotInvestmentAccount", err)
	}

	inv := newTestAccount(t, AccountInvestment, 2)
	if err := inv.SetRate(decimal.NewFromFloat(-0.1)); !errors.Is(err, ErrNegativeRate) {
		t.Errorf("SetRate(-0.1) error = %v, want ErrNegativeRate", err)
	}
	if err := inv.SetRate(decimal.NewFromFloat(0.12)); err != nil {
		t.Fatalf("SetRate(0.12) error = %v", err)
	}
	if got := inv.Rate().String(); got != "0.12" {
		t.Errorf("rate = %s, want 0.12", got)
	}
}

func TestAccount_BalanceNeverNegative(t *testing.T) {
	// Property check over a mixed operation sequence: whatever fails,
	// the balance invariant holds after every step.
	a := newTestAccount(t, AccountInvestment, 1)
	ops := []func() error{
		func() error { return a.Deposit(decimal.NewFromInt(50)) },
		func() error { return a.Withdraw(decimal.NewFromInt(80)) },
		func() error { return a.ChargeFee(decimal.NewFromInt(100)) },
		func() error { return a.CreateInvestment("T", decimal.NewFromInt(40), decimal.NewFromFloat(0.07)) },
		func() error { return a.Withdraw(decimal.NewFromInt(10)) },
		func() error { return a.Withdraw(decimal.NewFromInt(10)) },
	}
	for i, op := range ops {
		_ = op()
		if a.Balance().IsNegative() {
			t.Fatalf("balance went negative after operation %d: %s", i, a.Balance())
		}
	}
}

func TestAccount_HistoryIsCopied(t *testing.T) {
	a := newTestAccount(t, AccountSimple, 1)
	mustDeposit(t, a, "100")

	history := a.History()
	history[0].Amount = decimal.NewFromInt(999999)

	if !a.History()[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Error("History() must return a copy, not the internal slice")
	}
}
