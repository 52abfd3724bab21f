package ledger

import "errors"

var (
	// ErrInvalidParameter indicates a creation or deposit parameter is out of range.
	ErrInvalidParameter = errors.New("ledger: invalid parameter")

	// ErrInvalidAddress indicates a zero account address where one is required.
	ErrInvalidAddress = errors.New("ledger: invalid address")

	// ErrInsufficientBalance indicates a share transfer exceeds the sender's balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient share balance")

	// ErrNothingToClaim indicates the account has no pending revenue.
	ErrNothingToClaim = errors.New("ledger: nothing to claim")

	// ErrReentrantCall indicates a ledger operation re-entered from within a
	// currency transfer.
	ErrReentrantCall = errors.New("ledger: re-entrant call rejected")

	// ErrAmountOverflow indicates cumulative deposits would exceed the integer width.
	ErrAmountOverflow = errors.New("ledger: deposit amount overflow")
)
