package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tiendapos/backend/internal/services"
)

type AccountHandler struct {
	accounts  *services.AccountService
	validator *services.ValidationHelper
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		validator: services.NewValidationHelper(),
	}
}

// ListOpenAccounts lists accounts with a nonzero balance
// @Summary List open accounts
// @Description List every pending account with a nonzero balance
// @Tags accounts
// @Produce json
// @Success 200 {array} models.PendingAccount
// @Router /accounts [get]
func (h *AccountHandler) ListOpenAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListOpenAccounts(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Failed to list accounts", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// GetBalance returns a customer's pending balance
// @Summary Get account balance
// @Description Read-only balance snapshot; returns 0 for customers without an account
// @Tags accounts
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} object{customer_id=string,balance=string}
// @Router /accounts/{customerId}/balance [get]
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	balance, err := h.accounts.GetBalance(r.Context(), customerID)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch balance", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"customer_id": customerID,
		"balance":     balance,
	})
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordPayment applies a payment against a pending account
// @Summary Record a payment
// @Description Subtract a payment from the customer's pending balance; overpayment is kept as customer credit
// @Tags accounts
// @Accept json
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param payment body paymentRequest true "Payment data"
// @Success 200 {object} object{customer_id=string,balance=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{customerId}/payments [post]
func (h *AccountHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balance, err := h.accounts.RecordPayment(r.Context(), customerID, req.Amount)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"customer_id": customerID,
		"balance":     balance,
	})
}
