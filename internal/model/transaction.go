package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType represents the type of ledger entry
type EntryType string

const (
	EntryDeposit    EntryType = "DEPOSIT"
	EntryWithdrawal EntryType = "WITHDRAWAL"
	EntryTransfer   EntryType = "TRANSFER"
	EntryInterest   EntryType = "INTEREST"
	EntryFee        EntryType = "FEE"
)

// ParseEntryType maps a persisted type label to an EntryType
func ParseEntryType(s string) (EntryType, bool) {
	switch t := EntryType(s); t {
	case EntryDeposit, EntryWithdrawal, EntryTransfer, EntryInterest, EntryFee:
		return t, true
	}
	return "", false
}

// Entry is one immutable record of a balance-affecting event, the unit of
// the audit trail. Amounts are signed: positive for credits, negative for
// debits. Destination is set only for TRANSFER entries and refers to the
// destination account by number; 0 means none.
type Entry struct {
	ID          uuid.UUID       `json:"id"`
	Type        EntryType       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Time        time.Time       `json:"time"`
	Account     int64           `json:"account"`
	Destination int64           `json:"destination,omitempty"`
}

// IsCredit reports whether the entry increases the balance
func (e Entry) IsCredit() bool {
	return e.Amount.IsPositive()
}
