package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/lara-pickles/app/internal/domain/access"
	domorder "example.com/lara-pickles/app/internal/domain/order"
)

type mockOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domorder.Order
	err    error
}

func newMockOrderRepository(orders ...*domorder.Order) *mockOrderRepository {
	m := &mockOrderRepository{orders: map[uuid.UUID]*domorder.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o.Clone()
	}
	return m
}

func (m *mockOrderRepository) CreateFromCart(ctx context.Context, owner string, o *domorder.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (m *mockOrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domorder.Order
	for _, o := range m.orders {
		if filter.Matches(o) {
			result = append(result, o.Clone())
		}
	}
	domorder.SortNewestFirst(result)
	return result, nil
}

func (m *mockOrderRepository) FindByContact(ctx context.Context, q domorder.LookupQuery) ([]*domorder.Order, error) {
	return nil, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, apply func(o *domorder.Order) error) (*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	working := stored.Clone()
	if err := apply(working); err != nil {
		return nil, err
	}
	stored.Status = working.Status
	return stored.Clone(), nil
}

func (m *mockOrderRepository) CountByStatus(ctx context.Context) (map[domorder.Status]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domorder.Status]int64{}
	for _, o := range m.orders {
		counts[o.Status]++
	}
	return counts, nil
}

type mockProductCounter struct {
	count int64
}

func (m mockProductCounter) Count(ctx context.Context) (int64, error) {
	return m.count, nil
}

func admin() *access.Identity {
	return &access.Identity{Subject: "admin-1", Email: "boss@lara.example", Role: access.RoleAdmin}
}

func customer() *access.Identity {
	return &access.Identity{Subject: "cust-1", Email: "a@b.com", Role: access.RoleCustomer}
}

var baseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func sampleOrder(status domorder.Status, createdOffset time.Duration) *domorder.Order {
	return &domorder.Order{
		ID:              uuid.New(),
		Customer:        domorder.CustomerRef{Email: "a@b.com", Phone: "555-1111"},
		Lines:           []domorder.Line{{ProductID: 1, Name: "Classic Dill", UnitPrice: decimal.RequireFromString("8.99"), Quantity: 2}},
		TotalAmount:     decimal.RequireFromString("17.98"),
		DeliveryAddress: "12 Elm St",
		ContactPhone:    "555-1111",
		Status:          status,
		CreatedAt:       baseTime.Add(createdOffset),
	}
}

func newTestService(identity *access.Identity, repo *mockOrderRepository) (*Service, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return NewService(repo, mockProductCounter{count: 7}, access.StaticSession{Identity: identity}, logger), hook
}

func TestTransitionStatus_Allowed(t *testing.T) {
	cases := []struct {
		name string
		from domorder.Status
		to   domorder.Status
	}{
		{"approve pending", domorder.StatusPending, domorder.StatusApproved},
		{"reject pending", domorder.StatusPending, domorder.StatusRejected},
		{"deliver approved", domorder.StatusApproved, domorder.StatusDelivered},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := sampleOrder(tc.from, 0)
			repo := newMockOrderRepository(o)
			svc, hook := newTestService(admin(), repo)

			updated, err := svc.TransitionStatus(context.Background(), o.ID, tc.to)

			require.NoError(t, err)
			require.Equal(t, tc.to, updated.Status)
			require.True(t, updated.TotalAmount.Equal(o.TotalAmount))
			require.Equal(t, o.Lines, updated.Lines)
			require.Equal(t, "order status changed", hook.LastEntry().Message)
			require.Equal(t, tc.from, hook.LastEntry().Data["from"])
		})
	}
}

func TestTransitionStatus_Rejected(t *testing.T) {
	cases := []struct {
		name string
		from domorder.Status
		to   domorder.Status
	}{
		{"pending to delivered", domorder.StatusPending, domorder.StatusDelivered},
		{"pending to pending", domorder.StatusPending, domorder.StatusPending},
		{"approved to rejected", domorder.StatusApproved, domorder.StatusRejected},
		{"approved to pending", domorder.StatusApproved, domorder.StatusPending},
		{"rejected to approved", domorder.StatusRejected, domorder.StatusApproved},
		{"delivered to pending", domorder.StatusDelivered, domorder.StatusPending},
		{"delivered to rejected", domorder.StatusDelivered, domorder.StatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := sampleOrder(tc.from, 0)
			repo := newMockOrderRepository(o)
			svc, _ := newTestService(admin(), repo)

			_, err := svc.TransitionStatus(context.Background(), o.ID, tc.to)

			require.ErrorIs(t, err, domorder.ErrInvalidTransition)
			stored, _ := repo.GetByID(context.Background(), o.ID)
			require.Equal(t, tc.from, stored.Status)
		})
	}
}

func TestTransitionStatus_NonAdminIsUnauthorized(t *testing.T) {
	for _, identity := range []*access.Identity{nil, customer()} {
		for _, st := range domorder.AllStatuses {
			o := sampleOrder(st, 0)
			repo := newMockOrderRepository(o)
			svc, _ := newTestService(identity, repo)

			_, err := svc.TransitionStatus(context.Background(), o.ID, domorder.StatusApproved)

			require.ErrorIs(t, err, access.ErrUnauthorized)
			stored, _ := repo.GetByID(context.Background(), o.ID)
			require.Equal(t, st, stored.Status)
		}
	}
}

func TestTransitionStatus_UnknownStatus(t *testing.T) {
	o := sampleOrder(domorder.StatusPending, 0)
	repo := newMockOrderRepository(o)
	svc, _ := newTestService(admin(), repo)

	_, err := svc.TransitionStatus(context.Background(), o.ID, domorder.Status("SHIPPED"))

	require.ErrorIs(t, err, domorder.ErrInvalidTransition)
	stored, _ := repo.GetByID(context.Background(), o.ID)
	require.Equal(t, domorder.StatusPending, stored.Status)
}

func TestTransitionStatus_UnknownOrderBeforeUnknownStatus(t *testing.T) {
	svc, _ := newTestService(admin(), newMockOrderRepository())

	_, err := svc.TransitionStatus(context.Background(), uuid.New(), domorder.Status("SHIPPED"))

	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
	require.NotErrorIs(t, err, domorder.ErrInvalidTransition)
}

func TestTransitionStatus_NotFound(t *testing.T) {
	svc, _ := newTestService(admin(), newMockOrderRepository())

	_, err := svc.TransitionStatus(context.Background(), uuid.New(), domorder.StatusApproved)

	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
}

func TestTransitionStatus_ConcurrentAdminsOneWins(t *testing.T) {
	o := sampleOrder(domorder.StatusPending, 0)
	repo := newMockOrderRepository(o)
	svc, _ := newTestService(admin(), repo)

	var wg sync.WaitGroup
	results := make([]error, 2)
	targets := []domorder.Status{domorder.StatusApproved, domorder.StatusRejected}
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.TransitionStatus(context.Background(), o.ID, targets[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domorder.ErrInvalidTransition)
		}
	}
	require.Equal(t, 1, succeeded)
}

func TestList(t *testing.T) {
	older := sampleOrder(domorder.StatusPending, 0)
	newer := sampleOrder(domorder.StatusApproved, time.Hour)
	newest := sampleOrder(domorder.StatusPending, 2*time.Hour)
	repo := newMockOrderRepository(older, newer, newest)

	t.Run("all statuses newest first", func(t *testing.T) {
		svc, _ := newTestService(admin(), repo)
		orders, err := svc.List(context.Background(), domorder.ListFilter{})
		require.NoError(t, err)
		require.Len(t, orders, 3)
		require.Equal(t, newest.ID, orders[0].ID)
		require.Equal(t, older.ID, orders[2].ID)
	})

	t.Run("filter by status", func(t *testing.T) {
		svc, _ := newTestService(admin(), repo)
		orders, err := svc.List(context.Background(), domorder.ListFilter{Status: domorder.StatusPending})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		for _, o := range orders {
			require.Equal(t, domorder.StatusPending, o.Status)
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		svc, _ := newTestService(admin(), repo)
		orders, err := svc.List(context.Background(), domorder.ListFilter{Status: domorder.StatusDelivered})
		require.NoError(t, err)
		require.NotNil(t, orders)
		require.Empty(t, orders)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _ := newTestService(admin(), repo)
		_, err := svc.List(context.Background(), domorder.ListFilter{Status: "LOST"})
		require.ErrorIs(t, err, domorder.ErrInvalidStatus)
	})

	t.Run("customer is unauthorized", func(t *testing.T) {
		svc, _ := newTestService(customer(), repo)
		_, err := svc.List(context.Background(), domorder.ListFilter{})
		require.ErrorIs(t, err, access.ErrUnauthorized)
	})

	t.Run("store error passes through", func(t *testing.T) {
		failing := newMockOrderRepository()
		failing.err = errors.New("connection refused")
		svc, _ := newTestService(admin(), failing)
		_, err := svc.List(context.Background(), domorder.ListFilter{})
		require.EqualError(t, err, "connection refused")
	})
}

func TestGetByID(t *testing.T) {
	o := sampleOrder(domorder.StatusPending, 0)
	repo := newMockOrderRepository(o)

	svc, _ := newTestService(admin(), repo)
	got, err := svc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, o.ID, got.ID)

	svc, _ = newTestService(nil, repo)
	_, err = svc.GetByID(context.Background(), o.ID)
	require.ErrorIs(t, err, access.ErrUnauthorized)
}

func TestStats(t *testing.T) {
	repo := newMockOrderRepository(
		sampleOrder(domorder.StatusPending, 0),
		sampleOrder(domorder.StatusPending, time.Minute),
		sampleOrder(domorder.StatusDelivered, 2*time.Minute),
	)
	svc, _ := newTestService(admin(), repo)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	require.Equal(t, int64(7), stats.TotalProducts)
	require.Equal(t, int64(3), stats.TotalOrders)
	require.Equal(t, int64(2), stats.ByStatus[domorder.StatusPending])
	require.Equal(t, int64(0), stats.ByStatus[domorder.StatusApproved])
	require.Equal(t, int64(1), stats.ByStatus[domorder.StatusDelivered])
	require.Len(t, stats.ByStatus, len(domorder.AllStatuses))

	svc, _ = newTestService(customer(), repo)
	_, err = svc.Stats(context.Background())
	require.ErrorIs(t, err, access.ErrUnauthorized)
}
