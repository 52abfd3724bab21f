package currency

import "errors"

var (
	// ErrInsufficientFunds indicates the sender's balance is below the transfer amount.
	ErrInsufficientFunds = errors.New("currency: insufficient funds")

	// ErrInvalidAddress indicates a zero recipient address.
	ErrInvalidAddress = errors.New("currency: invalid address")

	// ErrBalanceOverflow indicates the recipient balance would exceed the integer width.
	ErrBalanceOverflow = errors.New("currency: balance overflow")
)
