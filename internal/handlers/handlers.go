package handlers

import (
	"errors"
	"net/http"

	"github.com/tiendapos/backend/internal/services"
)

// statusForError maps the ledger error taxonomy onto HTTP status codes.
// CompensationError maps to 500 but is additionally logged by the caller
// since it requires manual reconciliation.
func statusForError(err error) int {
	var compErr *services.CompensationError
	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrOverpaymentNotAllowed),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrEmptySale):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateBarcode):
		return http.StatusConflict
	case errors.As(err, &compErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
