package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cartfill/cartfill/internal/types"
)

const (
	defaultProductsPerPage = 50
	maxProductsPerPage     = 200
)

// ProductReader defines the store operations the product API needs.
// This abstraction enables testing without a real database.
type ProductReader interface {
	List(ctx context.Context, offset, limit int) ([]types.ProductDetails, bool, error)
	Get(ctx context.Context, sku int) (*types.ProductDetails, error)
	Count(ctx context.Context) (int, error)
}

// ProductHandler implements the product API handlers
type ProductHandler struct {
	store   ProductReader
	version string
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(store ProductReader, version string) *ProductHandler {
	return &ProductHandler{store: store, version: version}
}

// Health returns the health status
func (h *ProductHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	resp := map[string]interface{}{
		"status":   "healthy",
		"version":  h.version,
		"products": count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "products_per_page", defaultProductsPerPage)
	if page < 1 {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("page must be >= 1, got %d", page))
		return
	}
	if perPage < 1 || perPage > maxProductsPerPage {
		WriteProblem(w, r, http.StatusBadRequest,
			fmt.Sprintf("products_per_page must be within 1-%d, got %d", maxProductsPerPage, perPage))
		return
	}

	products, hasNext, err := h.store.List(r.Context(), (page-1)*perPage, perPage)
	if err != nil {
		slog.Error("product listing failed", "error", err, "page", page)
		MapStoreError(w, r, err)
		return
	}

	data := make([]types.ProductLineItem, len(products))
	for i, p := range products {
		data[i] = types.ProductLineItem{SKU: p.SKU, FullName: p.FullName()}
	}

	resp := types.ProductListingResponse{
		Data:  data,
		Count: len(data),
	}
	if page > 1 {
		prev := strconv.Itoa(page - 1)
		resp.Previous = &prev
	}
	if hasNext {
		next := strconv.Itoa(page + 1)
		resp.Next = &next
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetProduct handles GET /api/v1/products/{sku}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	sku, err := strconv.Atoi(chi.URLParam(r, "sku"))
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "sku must be an integer")
		return
	}

	product, err := h.store.Get(r.Context(), sku)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(types.ProductDetailsResponse{Data: *product})
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
