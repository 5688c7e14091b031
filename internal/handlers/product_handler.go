package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tiendapos/backend/internal/services"
)

type ProductHandler struct {
	products  *services.ProductService
	inventory *services.InventoryService
	labels    *services.LabelService
	validator *services.ValidationHelper
}

func NewProductHandler(products *services.ProductService, inventory *services.InventoryService, labels *services.LabelService) *ProductHandler {
	return &ProductHandler{
		products:  products,
		inventory: inventory,
		labels:    labels,
		validator: services.NewValidationHelper(),
	}
}

type productRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Barcode   string          `json:"barcode" validate:"required,max=64"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Stock     int             `json:"stock" validate:"gte=0"`
}

// CreateProduct registers a new product
// @Summary Create a product
// @Description Register a new catalog product with its initial stock
// @Tags products
// @Accept json
// @Produce json
// @Param product body productRequest true "Product data"
// @Success 201 {object} models.Product
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	p, err := h.products.CreateProduct(r.Context(), req.Name, req.Barcode, req.UnitPrice, req.Stock)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// ListProducts lists catalog products
// @Summary List products
// @Description List catalog products ordered by name
// @Tags products
// @Produce json
// @Param offset query int false "Offset (default 0)"
// @Param limit query int false "Limit (default 100)"
// @Success 200 {array} models.Product
// @Router /products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}

	products, err := h.products.ListProducts(r.Context(), offset, limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to list products", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

// GetProductByBarcode looks a product up by barcode
// @Summary Find product by barcode
// @Description Look a product up by its scanned barcode
// @Tags products
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} models.Product
// @Failure 404 {object} services.ErrorResponse
// @Router /products/barcode/{barcode} [get]
func (h *ProductHandler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	p, err := h.products.FindByBarcode(r.Context(), barcode)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// GetProduct retrieves a product by ID
// @Summary Get product
// @Description Retrieve a product by its ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// UpdateProduct edits a product
// @Summary Update a product
// @Description Edit name, barcode and unit price of a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body productRequest true "Product data"
// @Success 200 {object} models.Product
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), id, req.Name, req.Barcode, req.UnitPrice)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// DeleteProduct removes a product
// @Summary Delete a product
// @Description Remove a product from the catalog
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "product deleted"})
}

// GetStock returns the stock snapshot for a product
// @Summary Get product stock
// @Description Read-only snapshot of a product's current stock
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} object{product_id=string,stock=int}
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{id}/stock [get]
func (h *ProductHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stock, err := h.inventory.GetStock(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"product_id": id,
		"stock":      stock,
	})
}

// GetLabel renders a QR shelf label for a product
// @Summary Get product label
// @Description Base64 PNG QR code of the product's barcode
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} object{product_id=string,label=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /products/{id}/label [get]
func (h *ProductHandler) GetLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	label, err := h.labels.RenderLabel(r.Context(), id)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), statusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"product_id": id,
		"label":      label,
	})
}

// decodeJSON decodes a single JSON object from the body, rejecting
// unknown fields and trailing content.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}
