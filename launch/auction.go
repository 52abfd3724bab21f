package launch

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Handle identifies a running auction at the external service. Pool is the
// account the auctioned shares were handed to.
type Handle struct {
	ID   uuid.UUID
	Pool common.Address
}

// AuctionService is the external time-boxed token-release auction. Distribute
// either returns a handle synchronously or fails; any failure triggers the
// orchestrator's direct-to-operator fallback.
type AuctionService interface {
	Distribute(ledger common.Address, amount uint64, config []byte, salt [32]byte) (Handle, error)
}

// configFixedSize is the encoded config length before the schedule bytes:
// recipient(20) + start(8) + end(8) + tick(8) + floor(8) + min_raise(8).
const configFixedSize = 60

// EncodeDistributeConfig builds the auction service's nested parameter
// encoding. The migrator section (recipient on default) comes first, then the
// auction parameters in their contractually fixed order; the variable-length
// schedule bytes are always last.
func EncodeDistributeConfig(p LaunchParams) []byte {
	buf := make([]byte, configFixedSize+len(p.Schedule))
	offset := 0

	copy(buf[offset:offset+20], p.Operator.Bytes())
	offset += 20

	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(p.AuctionStart))
	offset += 8

	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(p.AuctionEnd))
	offset += 8

	binary.BigEndian.PutUint64(buf[offset:offset+8], p.TickSize)
	offset += 8

	binary.BigEndian.PutUint64(buf[offset:offset+8], p.FloorPrice)
	offset += 8

	binary.BigEndian.PutUint64(buf[offset:offset+8], p.MinRaise)
	offset += 8

	copy(buf[offset:], p.Schedule)
	return buf
}

// MockAuctionService is a test double for AuctionService.
// DistributeFn must be set before Distribute is called.
type MockAuctionService struct {
	DistributeFn func(ledger common.Address, amount uint64, config []byte, salt [32]byte) (Handle, error)
}

func (m *MockAuctionService) Distribute(ledger common.Address, amount uint64, config []byte, salt [32]byte) (Handle, error) {
	return m.DistributeFn(ledger, amount, config, salt)
}
