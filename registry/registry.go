// Package registry keeps an append-only catalog of launched services, keyed
// by ledger address and by collector address. The catalog is independent of
// ledger accounting: records are discovery metadata only.
package registry

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Record describes one launched service. Records are never deleted; a service
// that goes away is marked inactive.
type Record struct {
	Ledger           common.Address `json:"ledger"`
	Collector        common.Address `json:"collector"`
	Operator         common.Address `json:"operator"`
	Name             string         `json:"name"`
	Category         string         `json:"category"`
	Endpoint         string         `json:"endpoint"`
	OperatorShareBps uint32         `json:"operator_share_bps"`
	Active           bool           `json:"active"`
	CreatedAt        int64          `json:"created_at"` // unix seconds
}

// Index is the in-memory registry: a growable arena with monotonic indices
// and secondary lookups by ledger and collector address.
type Index struct {
	mu          sync.RWMutex
	records     []Record
	byLedger    map[common.Address]int
	byCollector map[common.Address]int
}

// NewIndex creates an empty registry.
func NewIndex() *Index {
	return &Index{
		byLedger:    make(map[common.Address]int),
		byCollector: make(map[common.Address]int),
	}
}

// validateRecord checks the fields every store requires.
func validateRecord(rec Record) error {
	if rec.Ledger == (common.Address{}) {
		return fmt.Errorf("%w: zero ledger", ErrInvalidAddress)
	}
	if rec.Collector == (common.Address{}) {
		return fmt.Errorf("%w: zero collector", ErrInvalidAddress)
	}
	if rec.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Register appends a record and returns its arena index.
func (x *Index) Register(rec Record) (int, error) {
	if err := validateRecord(rec); err != nil {
		return 0, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.byLedger[rec.Ledger]; ok {
		return 0, fmt.Errorf("%w: ledger %s", ErrDuplicateService, rec.Ledger.Hex())
	}
	if _, ok := x.byCollector[rec.Collector]; ok {
		return 0, fmt.Errorf("%w: collector %s", ErrDuplicateService, rec.Collector.Hex())
	}

	rec.Active = true
	idx := len(x.records)
	x.records = append(x.records, rec)
	x.byLedger[rec.Ledger] = idx
	x.byCollector[rec.Collector] = idx
	return idx, nil
}

// ByLedger returns the record registered under the given ledger address.
func (x *Index) ByLedger(ledger common.Address) (Record, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	idx, ok := x.byLedger[ledger]
	if !ok {
		return Record{}, fmt.Errorf("%w: ledger %s", ErrNotFound, ledger.Hex())
	}
	return x.records[idx], nil
}

// ByCollector returns the record registered under the given collector address.
func (x *Index) ByCollector(collector common.Address) (Record, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	idx, ok := x.byCollector[collector]
	if !ok {
		return Record{}, fmt.Errorf("%w: collector %s", ErrNotFound, collector.Hex())
	}
	return x.records[idx], nil
}

// List returns records in insertion order, optionally filtered by category.
// offset and limit paginate over the filtered sequence; limit <= 0 means no
// limit.
func (x *Index) List(category string, offset, limit int) []Record {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []Record
	skipped := 0
	for _, rec := range x.records {
		if category != "" && rec.Category != category {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Deactivate marks the service inactive. The record stays in the arena.
func (x *Index) Deactivate(ledger common.Address) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	idx, ok := x.byLedger[ledger]
	if !ok {
		return fmt.Errorf("%w: ledger %s", ErrNotFound, ledger.Hex())
	}
	x.records[idx].Active = false
	return nil
}

// Len returns the number of registered services.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}
