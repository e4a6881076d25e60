package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	domorder "example.com/lara-pickles/app/internal/domain/order"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// Quantity defaults to 1 when omitted.
	Quantity *int64 `json:"quantity"`
}

// setCartItemRequest keeps quantity raw: it comes from a free text field, and
// anything that does not read as an integer means remove.
type setCartItemRequest struct {
	Quantity json.RawMessage `json:"quantity" validate:"required"`
}

// parseQuantity reads a typed-in quantity the way a number input does: a
// leading integer is taken, fractions are truncated, everything else is 0.
func parseQuantity(raw json.RawMessage) int64 {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch x := v.(type) {
	case float64:
		switch {
		case x >= math.MaxInt64:
			return math.MaxInt64
		case x <= math.MinInt64:
			return math.MinInt64
		}
		return int64(x)
	case string:
		return leadingInt(x)
	default:
		return 0
	}
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	// ParseInt saturates on overflow.
	n, _ := strconv.ParseInt(s[:end], 10, 64)
	return n
}

type checkoutRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"max=1000"`
	ContactPhone    string `json:"contact_phone" validate:"max=32"`
	Notes           string `json:"notes" validate:"max=1000"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	view, err := a.cartSvc.GetCart(r.Context())
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapCart(view))
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := a.cartSvc.AddItem(r.Context(), req.ProductID, quantity)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.mapCart(view))
}

// handleSetCartItem overwrites a line's quantity; zero, negative or
// unreadable input removes it.
func (a *API) handleSetCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req setCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	view, err := a.cartSvc.SetQuantity(r.Context(), productID, parseQuantity(req.Quantity))
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapCart(view))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	view, err := a.cartSvc.RemoveItem(r.Context(), productID)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapCart(view))
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	order, err := a.checkoutSvc.PlaceOrder(r.Context(), domorder.DeliveryDetails{
		Address: req.DeliveryAddress,
		Phone:   req.ContactPhone,
		Notes:   req.Notes,
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, a.mapOrder(order))
}
