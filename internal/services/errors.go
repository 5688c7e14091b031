package services

import (
	"errors"
	"fmt"

	"github.com/tiendapos/backend/internal/store"
)

// Domain failures surfaced to callers. None are retried inside the core;
// retry policy for transient persistence errors belongs to the caller.
var (
	ErrProductNotFound       = store.ErrProductNotFound
	ErrAccountNotFound       = store.ErrAccountNotFound
	ErrSaleNotFound          = store.ErrSaleNotFound
	ErrDuplicateBarcode      = store.ErrDuplicateBarcode
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrOverpaymentNotAllowed = errors.New("amount paid exceeds sale total")
	ErrEmptySale             = errors.New("sale must contain at least one line item")
)

// PersistenceError wraps a repository-boundary failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CompensationError is fatal: a persistence failure occurred while undoing
// an already-applied step, so the ledger is in an unknown state and
// requires manual reconciliation.
type CompensationError struct {
	Op  string
	Err error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation failed during %s, ledger requires manual reconciliation: %v", e.Op, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }
