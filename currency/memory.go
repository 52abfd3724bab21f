package currency

import (
	"fmt"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemToken is an in-memory Token implementation. It is used by tests and by
// local (non-networked) deployments.
//
// An optional transfer hook runs after every successful transfer, outside the
// balance lock, so tests can model re-entrant callbacks from the currency
// layer into the ledger.
type MemToken struct {
	mu       sync.Mutex
	balances map[common.Address]uint64
	hook     func(from, to common.Address, amount uint64)
}

// NewMemToken creates an empty in-memory token.
func NewMemToken() *MemToken {
	return &MemToken{balances: make(map[common.Address]uint64)}
}

// Mint credits amount to addr out of thin air.
func (t *MemToken) Mint(addr common.Address, amount uint64) error {
	if addr == (common.Address{}) {
		return ErrInvalidAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if amount > math.MaxUint64-t.balances[addr] {
		return ErrBalanceOverflow
	}
	t.balances[addr] += amount
	return nil
}

// SetTransferHook installs fn to run after each successful transfer.
// Pass nil to remove the hook.
func (t *MemToken) SetTransferHook(fn func(from, to common.Address, amount uint64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hook = fn
}

// BalanceOf returns the balance held at addr.
func (t *MemToken) BalanceOf(addr common.Address) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[addr]
}

// Transfer moves amount from one account to another. A zero-amount transfer
// is a no-op. On error no balances change.
func (t *MemToken) Transfer(from, to common.Address, amount uint64) error {
	if to == (common.Address{}) {
		return ErrInvalidAddress
	}

	t.mu.Lock()
	if amount > t.balances[from] {
		t.mu.Unlock()
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, t.balances[from], amount)
	}
	if from == to {
		hook := t.hook
		t.mu.Unlock()
		if hook != nil {
			hook(from, to, amount)
		}
		return nil
	}
	if amount > math.MaxUint64-t.balances[to] {
		t.mu.Unlock()
		return ErrBalanceOverflow
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	hook := t.hook
	t.mu.Unlock()

	if hook != nil {
		hook(from, to, amount)
	}
	return nil
}
