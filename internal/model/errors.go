package model

import "errors"

var (
	// Account errors
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidAccount         = errors.New("destination account is invalid")
	ErrUnsupportedAccountKind = errors.New("unsupported account kind: must be SIMPLE or INVESTMENT")
	ErrNotInvestmentAccount   = errors.New("account is not an investment account")

	// Operation errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSameAccount         = errors.New("source and destination accounts must be different")
	ErrNegativeRate        = errors.New("interest rate cannot be negative")

	// Investment errors
	ErrDuplicateInvestment = errors.New("investment with this name already exists")
	ErrInvestmentNotFound  = errors.New("investment not found")

	// Registry errors
	ErrInvalidClient = errors.New("client must have a tax id")
	ErrUnknownClient = errors.New("client not registered with this bank")

	// ErrPersistence wraps any snapshot read/write failure. It is always
	// recoverable: load degrades to an empty registry, save to a skipped
	// snapshot.
	ErrPersistence = errors.New("persistence failure")
)
