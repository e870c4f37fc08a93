// Package handler exposes the order service and catalog over a JSON HTTP
// API, standing in for the original data-entry screens.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/aimsys/order-entry/internal/domain/catalog"
	"github.com/aimsys/order-entry/internal/domain/order"
	"github.com/aimsys/order-entry/internal/domain/staging"
)

// Handler serves the API routes, delegating business logic to the order
// service and the catalog repositories.
type Handler struct {
	customers catalog.CustomerRepository
	products  catalog.ProductRepository
	orders    *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	customers catalog.CustomerRepository,
	products catalog.ProductRepository,
	orders *order.Service,
) *Handler {
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// Routes registers all API routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/customers", h.ListCustomers)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("PUT /api/orders/{id}", h.UpdateOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.DeleteOrder)
}

// errorResponse is the JSON error envelope for all non-2xx responses.
type errorResponse struct {
	Code       int      `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Validation reports and
// catalog misses are client errors; everything unrecognized is a 500 and is
// logged with its full chain.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:       http.StatusUnprocessableEntity,
			Message:    "order failed validation",
			Violations: vErr.Report.Messages(),
		})
	case errors.Is(err, catalog.ErrCustomerNotFound),
		errors.Is(err, catalog.ErrProductNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    http.StatusNotFound,
			Message: "order not found",
		})
	case errors.Is(err, staging.ErrUnknownContainerType),
		errors.Is(err, staging.ErrInvalidQuantity),
		errors.Is(err, staging.ErrUnknownShipper),
		errors.Is(err, staging.ErrUnknownContainer):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	case errors.Is(err, order.ErrSequenceConflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:    http.StatusConflict,
			Message: "order ids changed during save, retry",
		})
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
		})
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (order.ID, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid order id")
	}
	return order.ID(id), nil
}
