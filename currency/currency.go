// Package currency defines the payment-currency transfer interface consumed
// by the ledger and collector, plus an in-memory token for tests and local
// deployments.
//
// The interface models standard pull/push transfer semantics: a transfer
// either moves the full amount and returns nil, or moves nothing and returns
// an error.
package currency

import (
	"github.com/ethereum/go-ethereum/common"
)

// Token is the payment-currency interface. Implementations must be
// all-or-nothing: on error no balance changes.
type Token interface {
	// BalanceOf returns the balance held at addr.
	BalanceOf(addr common.Address) uint64

	// Transfer moves amount from one account to another.
	Transfer(from, to common.Address, amount uint64) error
}
