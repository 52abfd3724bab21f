// Package collector receives per-request payments at a dedicated currency
// account and forwards them into a revenue-sharing ledger.
//
// Forwarding is permissionless: anyone may trigger it, and holders have the
// incentive to, since their pending revenue only grows when collected funds
// reach the ledger.
package collector

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/apifund/libapifund-go/currency"
	"github.com/apifund/libapifund-go/ledger"
)

// ForwardEvent records one successful forward.
type ForwardEvent struct {
	Caller common.Address
	Amount uint64
}

// Collector forwards its accumulated currency balance into a ledger.
// Stateless apart from the cumulative forwarded counter and the event log.
type Collector struct {
	mu sync.Mutex

	addr   common.Address
	ledger *ledger.Ledger
	token  currency.Token

	forwarded uint64
	events    []ForwardEvent
}

// New binds a collector to its currency account and target ledger.
func New(addr common.Address, l *ledger.Ledger, token currency.Token) (*Collector, error) {
	if addr == (common.Address{}) {
		return nil, ErrInvalidAddress
	}
	if l == nil {
		return nil, fmt.Errorf("%w: nil ledger", ErrInvalidParameter)
	}
	if token == nil {
		return nil, fmt.Errorf("%w: nil currency token", ErrInvalidParameter)
	}
	return &Collector{addr: addr, ledger: l, token: token}, nil
}

// Address returns the collector's payment-receiving account.
func (c *Collector) Address() common.Address { return c.addr }

// PendingBalance returns the currency received but not yet forwarded.
func (c *Collector) PendingBalance() uint64 {
	return c.token.BalanceOf(c.addr)
}

// Forwarded returns the cumulative amount forwarded into the ledger.
func (c *Collector) Forwarded() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forwarded
}

// Events returns a copy of the forward log.
func (c *Collector) Events() []ForwardEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ForwardEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Forward deposits the collector's entire un-forwarded balance into the
// ledger and returns the amount moved. Callable by anyone.
func (c *Collector) Forward(caller common.Address) (uint64, error) {
	if !c.mu.TryLock() {
		return 0, ErrReentrantCall
	}
	defer c.mu.Unlock()

	amount := c.token.BalanceOf(c.addr)
	if amount == 0 {
		return 0, ErrNothingToForward
	}

	if err := c.ledger.DepositRevenue(c.addr, amount); err != nil {
		return 0, fmt.Errorf("collector: forward deposit: %w", err)
	}

	c.forwarded += amount
	c.events = append(c.events, ForwardEvent{Caller: caller, Amount: amount})
	return amount, nil
}
