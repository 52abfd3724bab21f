// Package discovery produces the static service descriptor that clients
// fetch before paying, and the HTTP 402 surface that advertises it.
//
// The document must exactly mirror the live payment-verification
// configuration: a client that reads the advertised price, receiver, asset
// and network must be able to pay without a further round trip.
package discovery

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Document is the fetchable service descriptor. Price is quoted per request
// in currency base units, PayTo is the hex collector address, and Asset and
// Network identify the currency and chain the payment must land on.
type Document struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
	Price    uint64 `json:"price"`
	PayTo    string `json:"pay_to"`
	Asset    string `json:"asset"`
	Network  string `json:"network"`
}

// PaymentConfig is the live configuration the request-handling path verifies
// payments against.
type PaymentConfig struct {
	Price   uint64
	PayTo   common.Address
	Asset   string
	Network string
}

// NewDocument builds a document from the live payment configuration, so the
// two cannot drift at creation time.
func NewDocument(name, endpoint, method string, cfg PaymentConfig) (*Document, error) {
	if name == "" || endpoint == "" || method == "" {
		return nil, fmt.Errorf("%w: name, endpoint and method are required", ErrInvalidDocument)
	}
	if cfg.PayTo == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero pay-to address", ErrInvalidDocument)
	}
	return &Document{
		Name:     name,
		Endpoint: endpoint,
		Method:   method,
		Price:    cfg.Price,
		PayTo:    cfg.PayTo.Hex(),
		Asset:    cfg.Asset,
		Network:  cfg.Network,
	}, nil
}

// MatchesConfig checks the document against the live payment configuration
// field by field and names the first field that drifted.
func (d *Document) MatchesConfig(cfg PaymentConfig) error {
	if d.Price != cfg.Price {
		return fmt.Errorf("%w: price %d != %d", ErrConfigMismatch, d.Price, cfg.Price)
	}
	if d.PayTo != cfg.PayTo.Hex() {
		return fmt.Errorf("%w: pay_to %s != %s", ErrConfigMismatch, d.PayTo, cfg.PayTo.Hex())
	}
	if d.Asset != cfg.Asset {
		return fmt.Errorf("%w: asset %q != %q", ErrConfigMismatch, d.Asset, cfg.Asset)
	}
	if d.Network != cfg.Network {
		return fmt.Errorf("%w: network %q != %q", ErrConfigMismatch, d.Network, cfg.Network)
	}
	return nil
}
