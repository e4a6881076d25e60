package http

import (
	"net/http"

	domorder "example.com/lara-pickles/app/internal/domain/order"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// handleLookupOrders is the public "track my order" endpoint.
func (a *API) handleLookupOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := a.lookupSvc.FindOrders(r.Context(), q.Get("email"), q.Get("phone"))
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": a.mapOrders(orders)})
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := domorder.ListFilter{Status: parseStatus(r.URL.Query().Get("status"))}

	orders, err := a.orderSvc.List(r.Context(), filter)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": a.mapOrders(orders)})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseOrderID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := a.orderSvc.GetByID(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapOrder(o))
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseOrderID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	o, err := a.orderSvc.TransitionStatus(r.Context(), id, parseStatus(req.Status))
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapOrder(o))
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.orderSvc.Stats(r.Context())
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_products": stats.TotalProducts,
		"total_orders":   stats.TotalOrders,
		"pending_orders": stats.ByStatus[domorder.StatusPending],
		"by_status":      stats.ByStatus,
	})
}
