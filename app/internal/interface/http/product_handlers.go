package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

type productRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImageRef    string          `json:"image_ref" validate:"omitempty,url"`
	Category    string          `json:"category" validate:"required,max=100"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	IsActive    *bool           `json:"is_active"`
}

func (req productRequest) toDomain(id int64) *domproduct.Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &domproduct.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		ImageRef:    req.ImageRef,
		Category:    req.Category,
		Rating:      req.Rating,
		IsActive:    active,
	}
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domproduct.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     domproduct.SortKey(q.Get("sort")),
	}
	if filter.Search == "" {
		filter.Search = q.Get("q")
	}
	if strings.EqualFold(filter.Category, "all") {
		filter.Category = ""
	}

	products, err := a.productSvc.List(r.Context(), filter)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, a.mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapProduct(p))
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productSvc.Create(r.Context(), req.toDomain(0))
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.mapProduct(p))
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req productRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productSvc.Update(r.Context(), req.toDomain(id))
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.mapProduct(p))
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.productSvc.Delete(r.Context(), id); err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
