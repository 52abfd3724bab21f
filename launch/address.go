package launch

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Component tags keep ledger and collector addresses distinct for the same
// launch parameters.
const (
	tagLedger    = 0x4C // 'L'
	tagCollector = 0x43 // 'C'
)

// deriveAddress computes a content-derived component address from the launch
// salt and identifying parameters. It is an idempotency and lookup key, not a
// security property.
func deriveAddress(tag byte, salt [32]byte, operator common.Address, name string, supply uint64) common.Address {
	var sup [8]byte
	binary.BigEndian.PutUint64(sup[:], supply)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{tag})
	h.Write(salt[:])
	h.Write(operator.Bytes())
	h.Write([]byte(name))
	h.Write(sup[:])

	sum := h.Sum(nil)
	return common.BytesToAddress(sum[12:])
}
