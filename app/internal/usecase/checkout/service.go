package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
	domorder "example.com/lara-pickles/app/internal/domain/order"
	cartuc "example.com/lara-pickles/app/internal/usecase/cart"
)

type CartRepository interface {
	cartuc.ItemLister
}

type ProductCatalog interface {
	cartuc.ProductLookup
}

type OrderRepository interface {
	CreateFromCart(ctx context.Context, owner string, o *domorder.Order) error
}

type Service struct {
	cartRepo  CartRepository
	catalog   ProductCatalog
	orderRepo OrderRepository
	sessions  access.SessionProvider
	log       logrus.FieldLogger

	precision int32
	now       func() time.Time
	newID     func() uuid.UUID
}

type Option func(*Service)

// WithPrecision sets how many decimal places captured unit prices keep.
func WithPrecision(places int32) Option {
	return func(s *Service) { s.precision = places }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(cartRepo CartRepository, catalog ProductCatalog, orderRepo OrderRepository, sessions access.SessionProvider, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		cartRepo:  cartRepo,
		catalog:   catalog,
		orderRepo: orderRepo,
		sessions:  sessions,
		log:       log,
		precision: 2,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder turns the caller's cart into a PENDING order. The order is only
// returned once the store has written it and emptied the cart in the same
// transaction; on any failure the cart is left as it was.
func (s *Service) PlaceOrder(ctx context.Context, details domorder.DeliveryDetails) (*domorder.Order, error) {
	id, p := access.Resolve(ctx, s.sessions)
	owner := ""
	if id != nil {
		owner = id.Subject
	}
	if err := access.Authorize(p, access.OpPlaceOrder, owner); err != nil {
		return nil, err
	}

	snap, err := cartuc.LoadSnapshot(ctx, s.cartRepo, s.catalog, owner)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, domorder.ErrEmptyCart
	}

	customer := domorder.CustomerRef{Email: id.Email, Phone: id.Phone}
	if customer.Phone == "" {
		customer.Phone = strings.TrimSpace(details.Phone)
	}
	o, err := domorder.New(snap, customer, details, s.newID(), s.now(), s.precision)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateFromCart(ctx, owner, o); err != nil {
		s.log.WithError(err).WithField("owner", owner).Error("place order failed")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID.String(),
		"owner":    owner,
		"lines":    len(o.Lines),
		"total":    o.TotalAmount.StringFixed(s.precision),
	}).Info("order placed")
	return o, nil
}
