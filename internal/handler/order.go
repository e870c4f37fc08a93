package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aimsys/order-entry/internal/domain/order"
)

type lineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type containerRequest struct {
	Number     string        `json:"number"`
	Type       string        `json:"type"`
	Weight     float64       `json:"weight"`
	Dimensions string        `json:"dimensions"`
	Lines      []lineRequest `json:"lines"`
}

type shipperRequest struct {
	Number         string             `json:"number"`
	Carrier        string             `json:"carrier"`
	TrackingNumber string             `json:"trackingNumber"`
	Containers     []containerRequest `json:"containers"`
}

type orderRequest struct {
	CustomerID int64            `json:"customerId"`
	Shippers   []shipperRequest `json:"shippers"`
}

type lineResponse struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type containerResponse struct {
	ID         int64          `json:"id"`
	Number     string         `json:"number"`
	Type       string         `json:"type"`
	Weight     float64        `json:"weight"`
	Dimensions string         `json:"dimensions,omitempty"`
	Lines      []lineResponse `json:"lines"`
}

type shipperResponse struct {
	ID             int64               `json:"id"`
	Number         string              `json:"number"`
	Carrier        string              `json:"carrier"`
	TrackingNumber string              `json:"trackingNumber,omitempty"`
	ShipDate       *time.Time          `json:"shipDate,omitempty"`
	TotalWeight    float64             `json:"totalWeight"`
	Containers     []containerResponse `json:"containers"`
}

type orderSummaryResponse struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customerId"`
	CustomerName string    `json:"customerName"`
	OrderDate    time.Time `json:"orderDate"`
	Subtotal     float64   `json:"subtotal"`
	Discount     float64   `json:"discount"`
	Tax          float64   `json:"tax"`
	Total        float64   `json:"total"`
}

type orderResponse struct {
	orderSummaryResponse
	Shippers []shipperResponse `json:"shippers"`
}

// CreateOrder handles POST /api/orders: a full staged hierarchy is priced,
// validated, and committed as a new order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	h.saveOrder(w, r, 0)
}

// UpdateOrder handles PUT /api/orders/{id}: the request body replaces the
// order's hierarchy in full and totals are recomputed.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}
	h.saveOrder(w, r, id)
}

func (h *Handler) saveOrder(w http.ResponseWriter, r *http.Request, existing order.ID) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: "malformed request body",
		})
		return
	}

	hierarchy, err := h.orders.Save(r.Context(), toSaveRequest(req), existing)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if existing == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, toOrderResponse(hierarchy))
}

// GetOrder handles GET /api/orders/{id}, returning the nested hierarchy.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	hierarchy, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(hierarchy))
}

// ListOrders handles GET /api/orders, returning header rows only.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]orderSummaryResponse, len(orders))
	for i, o := range orders {
		resp[i] = toSummaryResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteOrder handles DELETE /api/orders/{id}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSaveRequest(req orderRequest) order.SaveRequest {
	out := order.SaveRequest{CustomerID: req.CustomerID}
	for _, sh := range req.Shippers {
		shipper := order.ShipperInput{
			Number:         sh.Number,
			Carrier:        sh.Carrier,
			TrackingNumber: sh.TrackingNumber,
		}
		for _, c := range sh.Containers {
			container := order.ContainerInput{
				Number:     c.Number,
				Type:       c.Type,
				Weight:     decimal.NewFromFloat(c.Weight),
				Dimensions: c.Dimensions,
			}
			for _, l := range c.Lines {
				container.Lines = append(container.Lines, order.LineInput{
					ProductID: l.ProductID,
					Quantity:  l.Quantity,
				})
			}
			shipper.Containers = append(shipper.Containers, container)
		}
		out.Shippers = append(out.Shippers, shipper)
	}
	return out
}

func toSummaryResponse(o order.Order) orderSummaryResponse {
	return orderSummaryResponse{
		ID:           int64(o.ID),
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		OrderDate:    o.OrderDate,
		Subtotal:     o.Subtotal.InexactFloat64(),
		Discount:     o.Discount.InexactFloat64(),
		Tax:          o.Tax.InexactFloat64(),
		Total:        o.Total.InexactFloat64(),
	}
}

// toOrderResponse nests the flat hierarchy rows: lines under their
// container, containers under their shipper.
func toOrderResponse(h *order.Hierarchy) orderResponse {
	linesByContainer := make(map[order.ID][]lineResponse)
	for _, l := range h.Lines {
		linesByContainer[l.ContainerID] = append(linesByContainer[l.ContainerID], lineResponse{
			ID:          int64(l.ID),
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.InexactFloat64(),
		})
	}

	containersByShipper := make(map[order.ID][]containerResponse)
	for _, c := range h.Containers {
		lines := linesByContainer[c.ID]
		if lines == nil {
			lines = []lineResponse{}
		}
		containersByShipper[c.ShipperID] = append(containersByShipper[c.ShipperID], containerResponse{
			ID:         int64(c.ID),
			Number:     c.Number,
			Type:       string(c.Type),
			Weight:     c.Weight.InexactFloat64(),
			Dimensions: c.Dimensions,
			Lines:      lines,
		})
	}

	shippers := make([]shipperResponse, len(h.Shippers))
	for i, s := range h.Shippers {
		containers := containersByShipper[s.ID]
		if containers == nil {
			containers = []containerResponse{}
		}
		shippers[i] = shipperResponse{
			ID:             int64(s.ID),
			Number:         s.Number,
			Carrier:        s.Carrier,
			TrackingNumber: s.TrackingNumber,
			ShipDate:       s.ShipDate,
			TotalWeight:    s.TotalWeight.InexactFloat64(),
			Containers:     containers,
		}
	}

	return orderResponse{
		orderSummaryResponse: toSummaryResponse(h.Order),
		Shippers:             shippers,
	}
}
