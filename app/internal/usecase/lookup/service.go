package lookup

import (
	"context"

	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
	domorder "example.com/lara-pickles/app/internal/domain/order"
)

type OrderFinder interface {
	FindByContact(ctx context.Context, q domorder.LookupQuery) ([]*domorder.Order, error)
}

// Service answers "where is my order" for anyone who knows an email or phone
// the order was placed with. It proves nothing about ownership.
type Service struct {
	orders   OrderFinder
	sessions access.SessionProvider
	log      logrus.FieldLogger
}

func NewService(orders OrderFinder, sessions access.SessionProvider, log logrus.FieldLogger) *Service {
	return &Service{orders: orders, sessions: sessions, log: log}
}

// FindOrders returns matching orders newest first. Email matches ignore case
// and phone must match exactly. Nothing matching is an empty slice, not an
// error.
func (s *Service) FindOrders(ctx context.Context, email, phone string) ([]*domorder.Order, error) {
	_, p := access.Resolve(ctx, s.sessions)
	if err := access.Authorize(p, access.OpLookupOrders, ""); err != nil {
		return nil, err
	}

	q := domorder.LookupQuery{Email: email, Phone: phone}.Normalize()
	if q.IsEmpty() {
		return nil, domorder.ErrMissingQuery
	}

	orders, err := s.orders.FindByContact(ctx, q)
	if err != nil {
		s.log.WithError(err).Error("order lookup failed")
		return nil, err
	}
	if orders == nil {
		orders = []*domorder.Order{}
	}
	domorder.SortNewestFirst(orders)

	s.log.WithFields(logrus.Fields{
		"by_email": q.Email != "",
		"by_phone": q.Phone != "",
		"matches":  len(orders),
	}).Debug("order lookup")
	return orders, nil
}
