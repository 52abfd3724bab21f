// Package launch provisions the components behind one monetized service: a
// revenue-sharing ledger, a payment collector, an optional external
// token-release auction, and a best-effort registry entry.
//
// A launch runs Validating, Deploying, AuctionAttempt, Registering, Done as a
// single atomic step. It either fails entirely during validation or succeeds
// with ledger and collector provisioned; auction and registry failures are
// recovered locally and never unwind the deployment.
package launch

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/apifund/libapifund-go/collector"
	"github.com/apifund/libapifund-go/currency"
	"github.com/apifund/libapifund-go/ledger"
	"github.com/apifund/libapifund-go/registry"
	"github.com/apifund/libapifund-go/schedule"
)

const bpsDenominator = 10000

// ServiceIndex is the consumed discovery-registry surface. Both
// registry.Index and registry.BoltIndex satisfy it.
type ServiceIndex interface {
	Register(rec registry.Record) (int, error)
}

// Config holds the orchestrator's bindings. Auction and Index are optional;
// when absent the corresponding launch stage takes its fallback.
type Config struct {
	// Address is the orchestrator's own account, which parks auction-bound
	// shares while an auction attempt runs.
	Address common.Address

	// Currency is the payment token every launched ledger settles in.
	Currency currency.Token

	Auction AuctionService
	Index   ServiceIndex

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Orchestrator launches monetized services and keeps the record of every
// launch it performed.
type Orchestrator struct {
	mu sync.Mutex

	addr    common.Address
	token   currency.Token
	auction AuctionService
	index   ServiceIndex
	now     func() time.Time

	services []*Service
	byLedger map[common.Address]*Service
	events   []Event
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero orchestrator address", ErrInvalidAddress)
	}
	if cfg.Currency == nil {
		return nil, fmt.Errorf("%w: nil currency token", ErrInvalidParameter)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		addr:     cfg.Address,
		token:    cfg.Currency,
		auction:  cfg.Auction,
		index:    cfg.Index,
		now:      now,
		byLedger: make(map[common.Address]*Service),
	}, nil
}

// splitByBps computes total*bps/10000 with a wide intermediate product.
func splitByBps(total uint64, bps uint32) uint64 {
	return sdkmath.NewIntFromUint64(total).
		MulRaw(int64(bps)).
		QuoRaw(bpsDenominator).
		Uint64()
}

// validate is the Validating stage: any error here aborts the launch with no
// state change anywhere.
func (o *Orchestrator) validate(p LaunchParams, willAuction bool) error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidParameter)
	}
	if p.TotalSupply == 0 {
		return fmt.Errorf("%w: zero total supply", ErrInvalidParameter)
	}
	if p.OperatorShareBps > bpsDenominator {
		return fmt.Errorf("%w: operator share %d bps exceeds 100%%", ErrInvalidParameter, p.OperatorShareBps)
	}
	if p.Operator == (common.Address{}) {
		return fmt.Errorf("%w: zero operator", ErrInvalidAddress)
	}
	if p.AuctionEnd <= o.now().Unix() {
		return fmt.Errorf("%w: auction end not in the future", ErrInvalidParameter)
	}
	if p.AuctionStart >= p.AuctionEnd {
		return fmt.Errorf("%w: auction window is empty", ErrInvalidParameter)
	}
	if willAuction {
		if len(p.Schedule) == 0 {
			return fmt.Errorf("%w: empty release schedule", ErrInvalidParameter)
		}
		if len(p.Schedule)%schedule.StepWidth != 0 {
			return fmt.Errorf("%w: schedule length %d is not a multiple of %d",
				ErrInvalidParameter, len(p.Schedule), schedule.StepWidth)
		}
		if p.TickSize == 0 {
			return fmt.Errorf("%w: zero price tick", ErrInvalidParameter)
		}
	}
	return nil
}

// Launch provisions one service. Ledger and collector always come up
// together; the auction hand-off and registry insert are best-effort with
// defined fallbacks.
func (o *Orchestrator) Launch(p LaunchParams) (*Service, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// Validating
	operatorAmount := splitByBps(p.TotalSupply, p.OperatorShareBps)
	auctionAmount := p.TotalSupply - operatorAmount
	willAuction := auctionAmount > 0

	if err := o.validate(p, willAuction); err != nil {
		return nil, err
	}

	ledgerAddr := deriveAddress(tagLedger, p.Salt, p.Operator, p.Name, p.TotalSupply)
	collectorAddr := deriveAddress(tagCollector, p.Salt, p.Operator, p.Name, p.TotalSupply)
	if _, exists := o.byLedger[ledgerAddr]; exists {
		return nil, fmt.Errorf("%w: ledger %s", ErrDuplicateLaunch, ledgerAddr.Hex())
	}

	// Deploying. The auction-bound remainder sits at the orchestrator's
	// address until the attempt resolves.
	treasury := p.Operator
	if willAuction {
		treasury = o.addr
	}
	l, err := ledger.New(ledger.Config{
		TotalShares:      p.TotalSupply,
		OperatorShareBps: p.OperatorShareBps,
		Operator:         p.Operator,
		Treasury:         treasury,
		Address:          ledgerAddr,
		Currency:         o.token,
	})
	if err != nil {
		return nil, err
	}
	c, err := collector.New(collectorAddr, l, o.token)
	if err != nil {
		return nil, err
	}

	// AuctionAttempt
	var handle *Handle
	if willAuction {
		handle = o.attemptAuction(l, p, auctionAmount)
	}

	// Registering
	o.register(p, ledgerAddr, collectorAddr)

	// Done
	svc := &Service{
		ID:            uuid.New(),
		LedgerAddr:    ledgerAddr,
		CollectorAddr: collectorAddr,
		Ledger:        l,
		Collector:     c,
		Auction:       handle,
		Operator:      p.Operator,
		CreatedAt:     o.now(),
	}
	o.services = append(o.services, svc)
	o.byLedger[ledgerAddr] = svc
	o.events = append(o.events, Event{Kind: EventLaunched, Ledger: ledgerAddr, Amount: p.TotalSupply})
	return svc, nil
}

// attemptAuction hands the auction-bound shares to the external service. Any
// failure, including an unconfigured service, recovers by returning the
// shares to the operator; the deployed ledger and collector are never rolled
// back.
func (o *Orchestrator) attemptAuction(l *ledger.Ledger, p LaunchParams, amount uint64) *Handle {
	handle, err := o.distribute(l, p, amount)
	if err == nil {
		return handle
	}

	if terr := l.Transfer(o.addr, p.Operator, amount); terr != nil {
		// Transferring the orchestrator's own full balance to a validated
		// operator cannot fail; record it if it somehow does.
		o.events = append(o.events, Event{
			Kind: EventAuctionSkipped, Ledger: l.Address(), Amount: amount,
			Reason: fmt.Sprintf("fallback transfer: %v", terr),
		})
		return nil
	}
	o.events = append(o.events, Event{
		Kind: EventAuctionSkipped, Ledger: l.Address(), Amount: amount,
		Reason: err.Error(),
	})
	return nil
}

// distribute is the tagged-result call into the auction service: the shares
// move only after the service accepts the distribution.
func (o *Orchestrator) distribute(l *ledger.Ledger, p LaunchParams, amount uint64) (*Handle, error) {
	if o.auction == nil {
		return nil, fmt.Errorf("no auction service configured")
	}
	handle, err := o.auction.Distribute(l.Address(), amount, EncodeDistributeConfig(p), p.Salt)
	if err != nil {
		return nil, err
	}
	if err := l.Transfer(o.addr, handle.Pool, amount); err != nil {
		// The external service already accepted the distribution; name the
		// handle so the operator can reconcile the orphaned auction.
		return nil, fmt.Errorf("distribution %s accepted but share hand-off failed: %w", handle.ID, err)
	}
	return &handle, nil
}

// register is the best-effort Registering stage; failures are observed, never
// propagated.
func (o *Orchestrator) register(p LaunchParams, ledgerAddr, collectorAddr common.Address) {
	if o.index == nil {
		o.events = append(o.events, Event{
			Kind: EventRegistrySkipped, Ledger: ledgerAddr, Reason: "no registry configured",
		})
		return
	}
	_, err := o.index.Register(registry.Record{
		Ledger:           ledgerAddr,
		Collector:        collectorAddr,
		Operator:         p.Operator,
		Name:             p.Name,
		Category:         p.Category,
		Endpoint:         p.Endpoint,
		OperatorShareBps: p.OperatorShareBps,
		CreatedAt:        o.now().Unix(),
	})
	if err != nil {
		o.events = append(o.events, Event{
			Kind: EventRegistrySkipped, Ledger: ledgerAddr, Reason: err.Error(),
		})
	}
}

// GetService returns the launch record for a ledger address.
func (o *Orchestrator) GetService(ledgerAddr common.Address) (*Service, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	svc, ok := o.byLedger[ledgerAddr]
	if !ok {
		return nil, fmt.Errorf("%w: ledger %s", ErrNotFound, ledgerAddr.Hex())
	}
	return svc, nil
}

// Services returns all launch records in launch order.
func (o *Orchestrator) Services() []*Service {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Service, len(o.services))
	copy(out, o.services)
	return out
}

// Events returns a copy of the orchestrator's observation log.
func (o *Orchestrator) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}
