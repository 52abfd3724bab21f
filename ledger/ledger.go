// Package ledger implements a fixed-supply revenue-sharing ledger.
//
// Shares entitle their holder to a proportional cut of all currency deposited
// into the ledger. Deposits are O(1) regardless of holder count: a global
// revenue-per-share accumulator is scaled by a large magnitude constant, and
// each account carries a signed correction term so that share transfers never
// move revenue that was already earned. Holders settle lazily through Claim.
package ledger

import (
	"fmt"
	"math"
	"math/big"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/apifund/libapifund-go/currency"
)

// bpsDenominator is the parts-per-ten-thousand basis of operator shares.
const bpsDenominator = 10000

// magnitude scales the revenue-per-share accumulator so that per-deposit
// truncation error stays negligible. 2^128 keeps every magnified product
// within 256-bit arithmetic for realistic supplies and deposits.
var magnitude = sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128))

// account holds the per-holder bookkeeping. Accounts are created implicitly
// on first balance change and never deleted.
type account struct {
	balance    uint64
	correction sdkmath.Int // signed, in magnified units
	withdrawn  uint64
}

// Config holds the parameters for a new ledger.
type Config struct {
	// TotalShares is the fixed share supply, immutable after creation.
	TotalShares uint64

	// OperatorShareBps is the operator's slice in parts-per-ten-thousand;
	// the remainder is seeded to Treasury.
	OperatorShareBps uint32

	// Operator and Treasury receive the initial share split.
	Operator common.Address
	Treasury common.Address

	// Address is the ledger's own currency account, where deposited revenue
	// sits until claimed.
	Address common.Address

	// Currency is the payment token revenue is denominated in.
	Currency currency.Token
}

// Ledger is a fixed-supply ownership-share store with pull-based revenue
// distribution. Every mutating operation is a single atomic step: it either
// commits in full or leaves no state change behind.
type Ledger struct {
	mu sync.Mutex

	addr  common.Address
	token currency.Token

	totalShares    uint64
	totalDeposited uint64
	accumulator    sdkmath.Int // magnified revenue per share, non-decreasing

	accounts map[common.Address]*account
}

// New creates a ledger and seeds the share split between operator and
// treasury.
func New(cfg Config) (*Ledger, error) {
	if cfg.TotalShares == 0 {
		return nil, fmt.Errorf("%w: zero total shares", ErrInvalidParameter)
	}
	if cfg.OperatorShareBps > bpsDenominator {
		return nil, fmt.Errorf("%w: operator share %d bps exceeds 100%%", ErrInvalidParameter, cfg.OperatorShareBps)
	}
	if cfg.Operator == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero operator", ErrInvalidAddress)
	}
	if cfg.Treasury == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero treasury", ErrInvalidAddress)
	}
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero ledger address", ErrInvalidAddress)
	}
	if cfg.Currency == nil {
		return nil, fmt.Errorf("%w: nil currency token", ErrInvalidParameter)
	}

	operatorAmount := splitByBps(cfg.TotalShares, cfg.OperatorShareBps)
	treasuryAmount := cfg.TotalShares - operatorAmount

	l := &Ledger{
		addr:        cfg.Address,
		token:       cfg.Currency,
		totalShares: cfg.TotalShares,
		accumulator: sdkmath.ZeroInt(),
		accounts:    make(map[common.Address]*account),
	}
	// += so an operator acting as its own treasury keeps both slices.
	if operatorAmount > 0 {
		l.account(cfg.Operator).balance += operatorAmount
	}
	if treasuryAmount > 0 {
		l.account(cfg.Treasury).balance += treasuryAmount
	}
	return l, nil
}

// splitByBps computes total*bps/10000 with a wide intermediate product.
func splitByBps(total uint64, bps uint32) uint64 {
	out := sdkmath.NewIntFromUint64(total).
		MulRaw(int64(bps)).
		QuoRaw(bpsDenominator)
	return out.Uint64()
}

// account returns the record for addr, creating it if needed.
// Callers must hold l.mu.
func (l *Ledger) account(addr common.Address) *account {
	acct, ok := l.accounts[addr]
	if !ok {
		acct = &account{correction: sdkmath.ZeroInt()}
		l.accounts[addr] = acct
	}
	return acct
}

// Address returns the ledger's own currency account.
func (l *Ledger) Address() common.Address { return l.addr }

// TotalShares returns the fixed share supply.
func (l *Ledger) TotalShares() uint64 { return l.totalShares }

// TotalDeposited returns cumulative revenue deposited since creation.
func (l *Ledger) TotalDeposited() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalDeposited
}

// BalanceOf returns the share balance of addr.
func (l *Ledger) BalanceOf(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acct, ok := l.accounts[addr]; ok {
		return acct.balance
	}
	return 0
}

// Withdrawn returns the cumulative revenue already claimed by addr.
func (l *Ledger) Withdrawn(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acct, ok := l.accounts[addr]; ok {
		return acct.withdrawn
	}
	return 0
}

// DepositRevenue pulls amount of currency from the depositor and credits all
// holders proportionally by advancing the accumulator. The work is O(1) in
// the number of holders.
func (l *Ledger) DepositRevenue(from common.Address, amount uint64) error {
	if !l.mu.TryLock() {
		return ErrReentrantCall
	}
	defer l.mu.Unlock()

	if amount == 0 {
		return fmt.Errorf("%w: zero deposit", ErrInvalidParameter)
	}
	if l.totalShares == 0 {
		return fmt.Errorf("%w: zero total shares", ErrInvalidParameter)
	}
	if amount > math.MaxUint64-l.totalDeposited {
		return ErrAmountOverflow
	}

	if err := l.token.Transfer(from, l.addr, amount); err != nil {
		return fmt.Errorf("ledger: pull deposit: %w", err)
	}

	// floor(amount * magnitude / totalShares), wide multiply-then-divide.
	delta := sdkmath.NewIntFromUint64(amount).
		Mul(magnitude).
		Quo(sdkmath.NewIntFromUint64(l.totalShares))
	l.accumulator = l.accumulator.Add(delta)
	l.totalDeposited += amount
	return nil
}

// PendingRevenue returns the revenue accrued by addr and not yet claimed.
func (l *Ledger) PendingRevenue(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending(addr)
}

// pending computes accrued minus withdrawn, clamped at zero.
// Callers must hold l.mu.
func (l *Ledger) pending(addr common.Address) uint64 {
	acct, ok := l.accounts[addr]
	if !ok {
		return 0
	}
	// accrued = (balance*accumulator + correction) / magnitude
	accrued := sdkmath.NewIntFromUint64(acct.balance).
		Mul(l.accumulator).
		Add(acct.correction).
		Quo(magnitude)
	pending := accrued.Sub(sdkmath.NewIntFromUint64(acct.withdrawn))
	if pending.IsNegative() {
		// Cannot occur with correct transfer bookkeeping.
		return 0
	}
	if !pending.IsUint64() {
		// Unreachable while the no-insolvency invariant holds.
		return math.MaxUint64
	}
	return pending.Uint64()
}

// Claim pays out the caller's pending revenue and returns the amount.
// The withdrawn counter is advanced before the outbound currency transfer so
// a re-entrant callback cannot double-claim; on transfer failure the counter
// is restored and the call leaves no state change.
func (l *Ledger) Claim(addr common.Address) (uint64, error) {
	if !l.mu.TryLock() {
		return 0, ErrReentrantCall
	}
	defer l.mu.Unlock()

	amount := l.pending(addr)
	if amount == 0 {
		return 0, ErrNothingToClaim
	}

	acct := l.accounts[addr]
	prev := acct.withdrawn
	acct.withdrawn += amount

	if err := l.token.Transfer(l.addr, addr, amount); err != nil {
		acct.withdrawn = prev
		return 0, fmt.Errorf("ledger: pay claim: %w", err)
	}
	return amount, nil
}

// Transfer moves shares between accounts and adjusts both correction terms so
// the sender keeps every unit of revenue already accrued while the receiver
// accrues only on the post-transfer balance.
func (l *Ledger) Transfer(from, to common.Address, amount uint64) error {
	if !l.mu.TryLock() {
		return ErrReentrantCall
	}
	defer l.mu.Unlock()

	if to == (common.Address{}) {
		return fmt.Errorf("%w: zero recipient", ErrInvalidAddress)
	}
	sender, ok := l.accounts[from]
	if !ok || amount > sender.balance {
		var have uint64
		if ok {
			have = sender.balance
		}
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, have, amount)
	}
	if from == to || amount == 0 {
		return nil
	}
	receiver := l.account(to)

	sender.balance -= amount
	receiver.balance += amount

	delta := sdkmath.NewIntFromUint64(amount).Mul(l.accumulator)
	sender.correction = sender.correction.Add(delta)
	receiver.correction = receiver.correction.Sub(delta)
	return nil
}
