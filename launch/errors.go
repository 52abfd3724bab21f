package launch

import "errors"

var (
	// ErrInvalidParameter indicates a launch parameter failed validation.
	ErrInvalidParameter = errors.New("launch: invalid parameter")

	// ErrInvalidAddress indicates a zero address where one is required.
	ErrInvalidAddress = errors.New("launch: invalid address")

	// ErrNotFound indicates no launched service exists for the given ledger.
	ErrNotFound = errors.New("launch: service not found")

	// ErrDuplicateLaunch indicates the derived ledger address is already in
	// use, i.e. the same salt and parameters were launched before.
	ErrDuplicateLaunch = errors.New("launch: duplicate launch")
)
