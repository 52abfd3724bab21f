package registry

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"
)

var (
	bucketRecords     = []byte("records")
	bucketByLedger    = []byte("by_ledger")
	bucketByCollector = []byte("by_collector")
)

// BoltIndex is a bbolt-backed registry with the same surface as Index.
// Records are gob-encoded under a monotonic 8-byte big-endian index; two
// secondary buckets map ledger and collector addresses to that index.
type BoltIndex struct {
	db *bbolt.DB
}

// OpenBoltIndex opens or creates the registry database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltIndex(dbPath string) (*BoltIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrStoreFailure, err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %w", ErrStoreFailure, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketByLedger, bucketByCollector} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	return &BoltIndex{db: db}, nil
}

// Close closes the underlying database.
func (b *BoltIndex) Close() error { return b.db.Close() }

// indexKey encodes an arena index as an 8-byte big-endian key so bolt keeps
// records in insertion order.
func indexKey(i uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, i)
	return k
}

func encodeRecord(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (Record, error) {
	var rec Record
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec)
	return rec, err
}

// Register appends a record and returns its arena index.
func (b *BoltIndex) Register(rec Record) (int, error) {
	if err := validateRecord(rec); err != nil {
		return 0, err
	}
	rec.Active = true

	var idx uint64
	err := b.db.Update(func(tx *bbolt.Tx) error {
		ledgers := tx.Bucket(bucketByLedger)
		collectors := tx.Bucket(bucketByCollector)
		if ledgers.Get(rec.Ledger.Bytes()) != nil {
			return fmt.Errorf("%w: ledger %s", ErrDuplicateService, rec.Ledger.Hex())
		}
		if collectors.Get(rec.Collector.Bytes()) != nil {
			return fmt.Errorf("%w: collector %s", ErrDuplicateService, rec.Collector.Hex())
		}

		records := tx.Bucket(bucketRecords)
		seq, err := records.NextSequence()
		if err != nil {
			return fmt.Errorf("%w: sequence: %w", ErrStoreFailure, err)
		}
		idx = seq - 1

		data, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("%w: encode: %w", ErrStoreFailure, err)
		}
		if err := records.Put(indexKey(idx), data); err != nil {
			return fmt.Errorf("%w: put record: %w", ErrStoreFailure, err)
		}
		if err := ledgers.Put(rec.Ledger.Bytes(), indexKey(idx)); err != nil {
			return fmt.Errorf("%w: put ledger index: %w", ErrStoreFailure, err)
		}
		if err := collectors.Put(rec.Collector.Bytes(), indexKey(idx)); err != nil {
			return fmt.Errorf("%w: put collector index: %w", ErrStoreFailure, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(idx), nil
}

// lookup resolves an address through a secondary bucket to its record.
func (b *BoltIndex) lookup(bucket []byte, addr common.Address, kind string) (Record, error) {
	var rec Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket(bucket).Get(addr.Bytes())
		if key == nil {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, addr.Hex())
		}
		data := tx.Bucket(bucketRecords).Get(key)
		if data == nil {
			return fmt.Errorf("%w: dangling %s index", ErrStoreFailure, kind)
		}
		var err error
		rec, err = decodeRecord(data)
		return err
	})
	return rec, err
}

// ByLedger returns the record registered under the given ledger address.
func (b *BoltIndex) ByLedger(ledger common.Address) (Record, error) {
	return b.lookup(bucketByLedger, ledger, "ledger")
}

// ByCollector returns the record registered under the given collector address.
func (b *BoltIndex) ByCollector(collector common.Address) (Record, error) {
	return b.lookup(bucketByCollector, collector, "collector")
}

// List returns records in insertion order, optionally filtered by category.
// limit <= 0 means no limit.
func (b *BoltIndex) List(category string, offset, limit int) ([]Record, error) {
	var out []Record
	err := b.db.View(func(tx *bbolt.Tx) error {
		skipped := 0
		return tx.Bucket(bucketRecords).ForEach(func(_, data []byte) error {
			rec, err := decodeRecord(data)
			if err != nil {
				return fmt.Errorf("%w: decode: %w", ErrStoreFailure, err)
			}
			if category != "" && rec.Category != category {
				return nil
			}
			if skipped < offset {
				skipped++
				return nil
			}
			if limit > 0 && len(out) >= limit {
				return nil
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate marks the service inactive. The record stays in the store.
func (b *BoltIndex) Deactivate(ledger common.Address) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		key := tx.Bucket(bucketByLedger).Get(ledger.Bytes())
		if key == nil {
			return fmt.Errorf("%w: ledger %s", ErrNotFound, ledger.Hex())
		}
		records := tx.Bucket(bucketRecords)
		rec, err := decodeRecord(records.Get(key))
		if err != nil {
			return fmt.Errorf("%w: decode: %w", ErrStoreFailure, err)
		}
		rec.Active = false
		data, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("%w: encode: %w", ErrStoreFailure, err)
		}
		return records.Put(key, data)
	})
}

// Len returns the number of registered services.
func (b *BoltIndex) Len() (int, error) {
	var n int
	err := b.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketRecords).Stats().KeyN
		return nil
	})
	return n, err
}
