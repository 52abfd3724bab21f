package discovery

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// WellKnownPath is where the discovery document is served.
const WellKnownPath = "/.well-known/service.json"

// Payment-required response headers.
const (
	HeaderPrice   = "X-Price"
	HeaderPayTo   = "X-Pay-To"
	HeaderAsset   = "X-Asset"
	HeaderNetwork = "X-Network"
)

// Authorizer is the opaque payment-is-authorized predicate supplied by the
// caller. Verification schemes are out of this package's scope.
type Authorizer func(r *http.Request) bool

// Handler serves the discovery document and gates the paid endpoint: unpaid
// requests receive 402 Payment Required with the payment headers set from the
// same configuration the document mirrors.
type Handler struct {
	doc  *Document
	cfg  PaymentConfig
	auth Authorizer
	next http.Handler
}

// NewHandler wraps next with the discovery and payment surface.
func NewHandler(doc *Document, cfg PaymentConfig, auth Authorizer, next http.Handler) *Handler {
	return &Handler{doc: doc, cfg: cfg, auth: auth, next: next}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == WellKnownPath {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.doc)
		return
	}

	if h.auth == nil || !h.auth(r) {
		setPaymentHeaders(w, h.cfg)
		return
	}
	h.next.ServeHTTP(w, r)
}

// setPaymentHeaders writes the 402 response advertising how to pay.
func setPaymentHeaders(w http.ResponseWriter, cfg PaymentConfig) {
	w.Header().Set(HeaderPrice, strconv.FormatUint(cfg.Price, 10))
	w.Header().Set(HeaderPayTo, cfg.PayTo.Hex())
	w.Header().Set(HeaderAsset, cfg.Asset)
	w.Header().Set(HeaderNetwork, cfg.Network)
	w.WriteHeader(http.StatusPaymentRequired)
}
