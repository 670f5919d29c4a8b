package orders

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid order request")
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStorage           = errors.New("order storage failure")

	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned by a store when the idempotency key was already used.
	ErrDuplicateOrder = errors.New("order already exists")
	// ErrTxConflict marks a transaction that lost a concurrency conflict and may be re-run.
	ErrTxConflict = errors.New("transaction conflict")
)

type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return "invalid order request: " + e.Reason }
func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string { return fmt.Sprintf("book %d not found", e.ItemID) }
func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }

type InsufficientStockError struct {
	ItemID    int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: available %d, requested %d", e.ItemID, e.Available, e.Requested)
}
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError is transient. The placement did not commit and may be retried from scratch.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }
