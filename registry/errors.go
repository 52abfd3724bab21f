package registry

import "errors"

var (
	// ErrInvalidAddress indicates a zero ledger or collector address.
	ErrInvalidAddress = errors.New("registry: invalid address")

	// ErrEmptyName indicates a record with no service name.
	ErrEmptyName = errors.New("registry: empty service name")

	// ErrDuplicateService indicates the ledger or collector is already registered.
	ErrDuplicateService = errors.New("registry: service already registered")

	// ErrNotFound indicates no record exists for the given key.
	ErrNotFound = errors.New("registry: service not found")

	// ErrStoreFailure indicates the persistent store rejected an operation.
	ErrStoreFailure = errors.New("registry: store failure")
)
