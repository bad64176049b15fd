package processor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcoelho/gobank/internal/bank"
	"github.com/devcoelho/gobank/internal/model"
)

func newTestBank(t *testing.T) *bank.Bank {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	b := bank.New("Test Bank", "001", bank.WithClock(clock))
	_, err := b.AddClient(&model.Client{Name: "João", CPF: "111.111.111-11"})
	require.NoError(t, err)
	return b
}

func TestPeriodProcessor_Run(t *testing.T) {
	t.Run("invalid arguments", func(t *testing.T) {
		p := NewPeriodProcessor(newTestBank(t))
		_, err := p.Run(0, decimal.Zero)
		assert.Error(t, err)
		_, err = p.Run(-3, decimal.Zero)
		assert.Error(t, err)
		_, err = p.Run(1, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, model.ErrInvalidAmount)
	})

	t.Run("interest on investment accounts", func(t *testing.T) {
		b := newTestBank(t)
		a, err := b.CreateAccount("111.111.111-11", model.AccountInvestment)
		require.NoError(t, err)
		require.NoError(t, b.Deposit(a.Number(), decimal.NewFromInt(1000)))
		require.NoError(t, b.SetRate(a.Number(), decimal.NewFromFloat(0.12)))

		result, err := NewPeriodProcessor(b).Run(1, decimal.Zero)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Months)
		require.Len(t, result.Changes, 1)
		assert.True(t, result.Changes[0].Before.Equal(decimal.NewFromInt(1000)))
		assert.True(t, result.Changes[0].After.Equal(decimal.NewFromInt(1010)), "1000 at 12%% earns 10 per month, got %s", result.Changes[0].After)
		assert.Empty(t, result.Warnings)

		history := a.History()
		var interestEntries int
		for _, e := range history {
			if e.Type == model.EntryInterest {
				interestEntries++
			}
		}
		assert.Equal(t, 1, interestEntries, "one month must record exactly one INTEREST entry")
	})

	t.Run("interest compounds across months", func(t *testing.T) {
		b := newTestBank(t)
		a, err := b.CreateAccount("111.111.111-11", model.AccountInvestment)
		require.NoError(t, err)
		require.NoError(t, b.Deposit(a.Number(), decimal.NewFromInt(1000)))
		require.NoError(t, b.SetRate(a.Number(), decimal.NewFromFloat(0.12)))

		result, err := NewPeriodProcessor(b).Run(2, decimal.Zero)
		require.NoError(t, err)

		// Month one credits 10, month two credits 1% of 1010.
		want := decimal.RequireFromString("1020.1")
		assert.True(t, result.Changes[0].After.Equal(want), "after = %s, want %s", result.Changes[0].After, want)
	})

	t.Run("fees on simple accounts", func(t *testing.T) {
		b := newTestBank(t)
		a, err := b.CreateAccount("111.111.111-11", model.AccountSimple)
		require.NoError(t, err)
		require.NoError(t, b.Deposit(a.Number(), decimal.NewFromInt(100)))

		result, err := NewPeriodProcessor(b).Run(12, decimal.RequireFromString("2.00"))
		require.NoError(t, err)

		assert.True(t, a.Balance().Equal(decimal.NewFromInt(76)), "12 fees of 2.00 leave 76, got %s", a.Balance())
		assert.Empty(t, result.Warnings)
	})

	t.Run("fee insufficiency stops charging and warns", func(t *testing.T) {
		b := newTestBank(t)
		a, err := b.CreateAccount("111.111.111-11", model.AccountSimple)
		require.NoError(t, err)
		require.NoError(t, b.Deposit(a.Number(), decimal.NewFromInt(5)))

		result, err := NewPeriodProcessor(b).Run(12, decimal.RequireFromString("2.00"))
		require.NoError(t, err, "insufficiency is a warning, not a run failure")

		require.Len(t, result.Warnings, 1)
		assert.Equal(t, a.Number(), result.Warnings[0].Account)
		assert.Equal(t, 3, result.Warnings[0].Month, "two fees fit in 5, the third month fails")
		assert.ErrorIs(t, result.Warnings[0].Err, model.ErrInsufficientBalance)
		assert.NotEmpty(t, result.Warnings[0].Message())
		assert.True(t, a.Balance().Equal(decimal.NewFromInt(1)), "balance stays at the remainder, got %s", a.Balance())
	})

	t.Run("zero fee skips charging", func(t *testing.T) {
		b := newTestBank(t)
		a, err := b.CreateAccount("111.111.111-11", model.AccountSimple)
		require.NoError(t, err)
		require.NoError(t, b.Deposit(a.Number(), decimal.NewFromInt(100)))

		result, err := NewPeriodProcessor(b).Run(6, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, a.Balance().Equal(decimal.NewFromInt(100)))
		assert.Empty(t, result.Warnings)
		assert.Len(t, a.History(), 1, "only the seed deposit should be on record")
	})

	t.Run("mixed kinds in one run", func(t *testing.T) {
		b := newTestBank(t)
		simple, err := b.CreateAccount("111.111.111-11", model.AccountSimple)
		require.NoError(t, err)
		invest, err := b.CreateAccount("111.111.111-11", model.AccountInvestment)
		require.NoError(t, err)
		require.NoError(t, b.Deposit(simple.Number(), decimal.NewFromInt(100)))
		require.NoError(t, b.Deposit(invest.Number(), decimal.NewFromInt(1000)))

		result, err := NewPeriodProcessor(b).Run(1, decimal.RequireFromString("2.00"))
		require.NoError(t, err)

		require.Len(t, result.Changes, 2)
		assert.True(t, simple.Balance().Equal(decimal.NewFromInt(98)))
		assert.True(t, invest.Balance().GreaterThan(decimal.NewFromInt(1000)), "investment account must earn, not pay fees")
	})
}
