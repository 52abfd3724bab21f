package collector

import "errors"

var (
	// ErrNothingToForward indicates the collector holds no un-forwarded balance.
	ErrNothingToForward = errors.New("collector: nothing to forward")

	// ErrInvalidAddress indicates a zero collector address.
	ErrInvalidAddress = errors.New("collector: invalid address")

	// ErrInvalidParameter indicates a missing ledger or currency binding.
	ErrInvalidParameter = errors.New("collector: invalid parameter")

	// ErrReentrantCall indicates Forward re-entered from within a currency transfer.
	ErrReentrantCall = errors.New("collector: re-entrant call rejected")
)
