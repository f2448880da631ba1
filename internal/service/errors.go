package service

import "errors"

// Sentinel errors returned by the ledger and workflow services. Handlers map
// these to HTTP status codes; none of them is fatal to the process.
var (
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrUnknownItem         = errors.New("item not found")
	ErrInvalidLocation     = errors.New("invalid stock location")
	ErrInvalidLocationPair = errors.New("transfer source and destination must differ")
	ErrInsufficientStock   = errors.New("insufficient stock remaining")
	ErrNotPending          = errors.New("request already resolved")
	ErrReasonRequired      = errors.New("reason is required for stock write-offs")
	ErrSKUExists           = errors.New("SKU already exists")
	ErrSupplierNotFound    = errors.New("supplier not found")
	ErrSupplierInUse       = errors.New("supplier has pending purchase requests")
)
