package launch

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/apifund/libapifund-go/collector"
	"github.com/apifund/libapifund-go/ledger"
)

// LaunchParams holds everything a launch needs. Schedule carries the packed
// release steps built by the schedule package.
type LaunchParams struct {
	Name   string
	Symbol string

	TotalSupply      uint64
	OperatorShareBps uint32
	Operator         common.Address

	AuctionStart int64 // unix seconds
	AuctionEnd   int64 // unix seconds
	TickSize     uint64
	FloorPrice   uint64 // Q32.32
	MinRaise     uint64
	Schedule     []byte

	// Salt makes component addresses deterministic and launches idempotent.
	Salt [32]byte

	Category string
	Endpoint string
}

// Service is the immutable record of one completed launch. Auction is nil
// when the fallback path ran.
type Service struct {
	ID            uuid.UUID
	LedgerAddr    common.Address
	CollectorAddr common.Address
	Ledger        *ledger.Ledger
	Collector     *collector.Collector
	Auction       *Handle
	Operator      common.Address
	CreatedAt     time.Time
}

// EventKind discriminates orchestrator observations.
type EventKind int

const (
	// EventLaunched marks a completed launch.
	EventLaunched EventKind = iota + 1

	// EventAuctionSkipped marks an auction attempt recovered by the
	// direct-to-operator fallback.
	EventAuctionSkipped

	// EventRegistrySkipped marks a registry insert that failed or was not
	// configured; never fatal.
	EventRegistrySkipped
)

// Event is one orchestrator observation.
type Event struct {
	Kind   EventKind
	Ledger common.Address
	Amount uint64
	Reason string
}
