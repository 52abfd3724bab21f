package discovery

import "errors"

var (
	// ErrInvalidDocument indicates a document with missing required fields.
	ErrInvalidDocument = errors.New("discovery: invalid document")

	// ErrConfigMismatch indicates the document does not mirror the live
	// payment configuration.
	ErrConfigMismatch = errors.New("discovery: document does not match payment config")
)
