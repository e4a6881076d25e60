package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
	domcart "example.com/lara-pickles/app/internal/domain/cart"
	"example.com/lara-pickles/app/internal/domain/failure"
	domorder "example.com/lara-pickles/app/internal/domain/order"
	domproduct "example.com/lara-pickles/app/internal/domain/product"
	cartuc "example.com/lara-pickles/app/internal/usecase/cart"
	checkoutuc "example.com/lara-pickles/app/internal/usecase/checkout"
	lookupuc "example.com/lara-pickles/app/internal/usecase/lookup"
	orderuc "example.com/lara-pickles/app/internal/usecase/order"
	productuc "example.com/lara-pickles/app/internal/usecase/product"
)

// TokenVerifier turns a bearer token from the identity provider into an
// identity.
type TokenVerifier interface {
	ParseToken(token string) (*access.Identity, error)
}

type API struct {
	productSvc  *productuc.Service
	cartSvc     *cartuc.Service
	checkoutSvc *checkoutuc.Service
	orderSvc    *orderuc.Service
	lookupSvc   *lookupuc.Service
	tokens      TokenVerifier
	validator   *validator.Validate
	log         logrus.FieldLogger
	precision   int32
}

type Dependencies struct {
	ProductService  *productuc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	OrderService    *orderuc.Service
	LookupService   *lookupuc.Service
	TokenVerifier   TokenVerifier
	Logger          logrus.FieldLogger
	// Precision is the number of decimal places money is rendered with.
	Precision int32
}

func NewAPI(deps Dependencies) *API {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &API{
		productSvc:  deps.ProductService,
		cartSvc:     deps.CartService,
		checkoutSvc: deps.CheckoutService,
		orderSvc:    deps.OrderService,
		lookupSvc:   deps.LookupService,
		tokens:      deps.TokenVerifier,
		validator:   validator.New(),
		log:         log,
		precision:   deps.Precision,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.identityMiddleware)

		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)
		r.Get("/orders/lookup", a.handleLookupOrders)

		r.Route("/me", func(me chi.Router) {
			me.Get("/cart", a.handleGetCart)
			me.Post("/cart/items", a.handleAddCartItem)
			me.Put("/cart/items/{id}", a.handleSetCartItem)
			me.Delete("/cart/items/{id}", a.handleRemoveCartItem)
			me.Post("/checkout", a.handleCheckout)
		})

		r.Route("/admin", func(admin chi.Router) {
			admin.Get("/stats", a.handleStats)

			admin.Route("/products", func(rr chi.Router) {
				rr.Post("/", a.handleCreateProduct)
				rr.Put("/{id}", a.handleUpdateProduct)
				rr.Delete("/{id}", a.handleDeleteProduct)
			})

			admin.Route("/orders", func(rr chi.Router) {
				rr.Get("/", a.handleListOrders)
				rr.Get("/{id}", a.handleGetOrder)
				rr.Patch("/{id}", a.handleUpdateOrderStatus)
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func parseStatus(s string) domorder.Status {
	return domorder.Status(strings.ToUpper(strings.TrimSpace(s)))
}

func (a *API) money(d decimal.Decimal) string {
	return d.StringFixed(a.precision)
}

func (a *API) mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"unit_price":  a.money(p.UnitPrice),
		"image_ref":   p.ImageRef,
		"category":    p.Category,
		"rating":      p.Rating,
		"is_active":   p.IsActive,
	}
}

func (a *API) mapCart(v *domcart.View) map[string]any {
	items := make([]map[string]any, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, map[string]any{
			"product_id": l.ProductID,
			"quantity":   l.Quantity,
			"name":       l.ProductName,
			"unit_price": a.money(l.UnitPrice),
			"line_total": a.money(l.LineTotal),
			"available":  l.Available,
		})
	}
	return map[string]any{
		"items":       items,
		"grand_total": a.money(v.GrandTotal),
	}
}

func (a *API) mapOrder(o *domorder.Order) map[string]any {
	lines := make([]map[string]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, map[string]any{
			"product_id": l.ProductID,
			"name":       l.Name,
			"unit_price": a.money(l.UnitPrice),
			"quantity":   l.Quantity,
			"amount":     a.money(l.Amount()),
		})
	}

	return map[string]any{
		"id": o.ID.String(),
		"customer": map[string]string{
			"email": o.Customer.Email,
			"phone": o.Customer.Phone,
		},
		"lines":            lines,
		"total_amount":     a.money(o.TotalAmount),
		"delivery_address": o.DeliveryAddress,
		"contact_phone":    o.ContactPhone,
		"notes":            o.Notes,
		"status":           o.Status,
		"created_at":       o.CreatedAt,
	}
}

func (a *API) mapOrders(orders []*domorder.Order) []map[string]any {
	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, a.mapOrder(o))
	}
	return resp
}

// handleDomainError maps service errors to status codes. An unauthorized call
// is 401 when nobody is signed in and 403 otherwise.
func (a *API) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, access.ErrUnauthorized):
		if _, signedIn := access.IdentityFrom(r.Context()); !signedIn {
			respondError(w, http.StatusUnauthorized, err)
			return
		}
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domorder.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domproduct.ErrInvalidName),
		errors.Is(err, domproduct.ErrInvalidPrice),
		errors.Is(err, domproduct.ErrInvalidCategory),
		errors.Is(err, domproduct.ErrInvalidSort),
		errors.Is(err, domorder.ErrEmptyCart),
		errors.Is(err, domorder.ErrMissingDeliveryInfo),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domorder.ErrMissingQuery):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, failure.ErrStoreUnavailable):
		a.entry(r).WithError(err).Error("store unavailable")
		respondError(w, http.StatusServiceUnavailable, failure.ErrStoreUnavailable)
	default:
		a.entry(r).WithError(err).Error("unhandled error")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
