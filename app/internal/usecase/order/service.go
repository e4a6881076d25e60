package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
	domorder "example.com/lara-pickles/app/internal/domain/order"
)

type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service is the back-office view of orders. Every method is admin-only and
// checks the gate before touching the store.
type Service struct {
	repo     domorder.Repository
	products ProductCounter
	sessions access.SessionProvider
	log      logrus.FieldLogger
}

func NewService(repo domorder.Repository, products ProductCounter, sessions access.SessionProvider, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, products: products, sessions: sessions, log: log}
}

func (s *Service) authorize(ctx context.Context, op access.Operation) (*access.Identity, error) {
	id, p := access.Resolve(ctx, s.sessions)
	if err := access.Authorize(p, op, ""); err != nil {
		return nil, err
	}
	return id, nil
}

func (s *Service) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	if _, err := s.authorize(ctx, access.OpListOrders); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domorder.Order{}
	}
	return orders, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domorder.Order, error) {
	if _, err := s.authorize(ctx, access.OpViewOrder); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// TransitionStatus moves an order along PENDING -> APPROVED|REJECTED,
// APPROVED -> DELIVERED. The read, check and write happen inside the store so
// two admins racing on one order cannot both win.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, next domorder.Status) (*domorder.Order, error) {
	caller, err := s.authorize(ctx, access.OpTransitionOrder)
	if err != nil {
		return nil, err
	}

	var from domorder.Status
	o, err := s.repo.UpdateStatus(ctx, id, func(o *domorder.Order) error {
		from = o.Status
		return o.Transition(next)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": id.String(),
		"from":     from,
		"to":       next,
		"admin":    caller.Subject,
	}).Info("order status changed")
	return o, nil
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*domorder.Stats, error) {
	if _, err := s.authorize(ctx, access.OpViewDashboard); err != nil {
		return nil, err
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domorder.Stats{TotalProducts: products, ByStatus: make(map[domorder.Status]int64, len(domorder.AllStatuses))}
	for _, st := range domorder.AllStatuses {
		stats.ByStatus[st] = byStatus[st]
		stats.TotalOrders += byStatus[st]
	}
	return stats, nil
}
