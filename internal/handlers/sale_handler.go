package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/tiendapos/backend/internal/services"
)

const (
	idempotencyTTL = 24 * time.Hour

	// Placeholder stored while the claiming request is still in flight.
	idempotencyPending = "pending"
)

type SaleHandler struct {
	sales     *services.SaleService
	redis     *redis.Client
	validator *services.ValidationHelper
}

func NewSaleHandler(sales *services.SaleService, redisClient *redis.Client) *SaleHandler {
	return &SaleHandler{
		sales:     sales,
		redis:     redisClient,
		validator: services.NewValidationHelper(),
	}
}

type createSaleRequest struct {
	CustomerID string                         `json:"customer_id" validate:"required,max=100"`
	Items      []services.SaleLineItemRequest `json:"items" validate:"required,min=1,dive"`
	AmountPaid decimal.Decimal                `json:"amount_paid" validate:"gte=0"`
}

// CreateSale finalizes a new sale
// @Summary Create a sale
// @Description Atomically reserve stock for each line item, apply the payment and post any unpaid remainder to the customer's pending account. When Redis is available the Idempotency-Key header is claimed with SETNX: a repeated key replays the original sale with 201, and a key whose first request is still in flight gets 409.
// @Tags sales
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param sale body createSaleRequest true "Sale data"
// @Success 201 {object} models.Sale
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /sales [post]
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// Duplicate submissions with the same key replay the original sale
	// instead of consuming stock twice. SETNX makes the claim atomic: of
	// two concurrent requests only one reaches CreateSale.
	idemKey := r.Header.Get("Idempotency-Key")
	claimed := false
	var redisKey string
	if idemKey != "" && h.redis != nil {
		redisKey = "sale:idem:" + idemKey
		ok, err := h.redis.SetNX(r.Context(), redisKey, idempotencyPending, idempotencyTTL).Result()
		switch {
		case err != nil:
			log.Printf("[SALE] Idempotency claim for %s failed, proceeding without replay guard: %v", idemKey, err)
		case ok:
			claimed = true
		default:
			saleID, err := h.redis.Get(r.Context(), redisKey).Result()
			if err == nil && saleID != "" && saleID != idempotencyPending {
				if sale, err := h.sales.GetSale(r.Context(), saleID); err == nil {
					log.Printf("[SALE] Replaying idempotent request %s -> sale %s", idemKey, saleID)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusCreated)
					json.NewEncoder(w).Encode(sale)
					return
				}
			}
			services.SendErrorResponse(w, "A sale with this idempotency key is still being processed", http.StatusConflict, nil)
			return
		}
	}

	sale, err := h.sales.CreateSale(r.Context(), req.CustomerID, req.Items, req.AmountPaid)
	if err != nil {
		if claimed {
			// Release the claim so the client can retry after a failure.
			if delErr := h.redis.Del(r.Context(), redisKey).Err(); delErr != nil {
				log.Printf("[SALE] Failed to release idempotency key %s: %v", idemKey, delErr)
			}
		}
		var compErr *services.CompensationError
		if errors.As(err, &compErr) {
			log.Printf("[SALE] FATAL: %v", compErr)
		}
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	if claimed {
		if err := h.redis.Set(r.Context(), redisKey, sale.ID, idempotencyTTL).Err(); err != nil {
			log.Printf("[SALE] Failed to record idempotency key %s: %v", idemKey, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sale)
}

// GetSale retrieves a sale by ID
// @Summary Get sale
// @Description Retrieve a finalized sale by its ID
// @Tags sales
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} models.Sale
// @Failure 404 {object} services.ErrorResponse
// @Router /sales/{id} [get]
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sale, err := h.sales.GetSale(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sale)
}

// ListSales lists recent sales
// @Summary List sales
// @Description List recent finalized sales, newest first
// @Tags sales
// @Produce json
// @Param limit query int false "Limit (default 50)"
// @Success 200 {object} object{sales=[]models.Sale,count=int}
// @Router /sales [get]
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sales, err := h.sales.ListSales(r.Context(), limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to list sales", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sales": sales,
		"count": len(sales),
	})
}
