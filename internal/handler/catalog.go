package handler

import "net/http"

type customerResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type productResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
}

// ListCustomers handles GET /api/customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = customerResponse{
			ID:      c.ID,
			Name:    c.Name,
			Type:    string(c.Type),
			Email:   c.Email,
			Phone:   c.Phone,
			Address: c.Address,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = productResponse{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
