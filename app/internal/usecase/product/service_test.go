package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/lara-pickles/app/internal/domain/access"
	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

type mockProductRepository struct {
	products  map[int64]*domproduct.Product
	nextID    int64
	deletedID int64
	lastList  domproduct.ListFilter
}

func newMockProductRepository(products ...*domproduct.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[int64]*domproduct.Product), nextID: 1}
	for _, p := range products {
		m.products[p.ID] = p
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	cloned := *p
	cloned.ID = m.nextID
	m.nextID++
	m.products[cloned.ID] = &cloned
	return &cloned, nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := *p
	m.products[p.ID] = &cloned
	return &cloned, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return domproduct.ErrProductNotFound
	}
	delete(m.products, id)
	m.deletedID = id
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	var result []*domproduct.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cloned := *p
			result = append(result, &cloned)
		}
	}
	return result, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	m.lastList = filter
	all := make([]*domproduct.Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, p)
	}
	return domproduct.Apply(all, filter), nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

func catalog() *mockProductRepository {
	return newMockProductRepository(
		&domproduct.Product{ID: 1, Name: "Classic Dill", Description: "crunchy garlic dill", UnitPrice: decimal.RequireFromString("8.99"), Category: "classic", Rating: 4.5, IsActive: true},
		&domproduct.Product{ID: 2, Name: "Spicy Mango", Description: "sweet heat", UnitPrice: decimal.RequireFromString("12.50"), Category: "spicy", Rating: 4.8, IsActive: true},
		&domproduct.Product{ID: 3, Name: "Bread and Butter", Description: "sweet and tangy", UnitPrice: decimal.RequireFromString("6.25"), Category: "classic", Rating: 4.1, IsActive: true},
		&domproduct.Product{ID: 4, Name: "Retired Relish", UnitPrice: decimal.RequireFromString("3.00"), Category: "relish", IsActive: false},
	)
}

func admin() *access.Identity {
	return &access.Identity{Subject: "admin-1", Role: access.RoleAdmin}
}

func customer() *access.Identity {
	return &access.Identity{Subject: "cust-1", Role: access.RoleCustomer}
}

func newTestService(identity *access.Identity, repo *mockProductRepository) (*Service, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return NewService(repo, access.StaticSession{Identity: identity}, logger), hook
}

func names(products []*domproduct.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestList(t *testing.T) {
	cases := []struct {
		name   string
		filter domproduct.ListFilter
		want   []string
	}{
		{"default sort by name", domproduct.ListFilter{}, []string{"Bread and Butter", "Classic Dill", "Spicy Mango"}},
		{"price low to high", domproduct.ListFilter{Sort: domproduct.SortByPriceLow}, []string{"Bread and Butter", "Classic Dill", "Spicy Mango"}},
		{"price high to low", domproduct.ListFilter{Sort: domproduct.SortByPriceHigh}, []string{"Spicy Mango", "Classic Dill", "Bread and Butter"}},
		{"rating", domproduct.ListFilter{Sort: domproduct.SortByRating}, []string{"Spicy Mango", "Classic Dill", "Bread and Butter"}},
		{"category", domproduct.ListFilter{Category: "Classic"}, []string{"Bread and Butter", "Classic Dill"}},
		{"search description", domproduct.ListFilter{Search: "SWEET"}, []string{"Bread and Butter", "Spicy Mango"}},
		{"no match", domproduct.ListFilter{Search: "kimchi"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(nil, catalog())

			products, err := svc.List(context.Background(), tc.filter)

			require.NoError(t, err)
			require.Equal(t, tc.want, names(products))
		})
	}
}

func TestList_InactiveVisibleToAdminOnly(t *testing.T) {
	repo := catalog()

	svc, _ := newTestService(customer(), repo)
	products, err := svc.List(context.Background(), domproduct.ListFilter{})
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.True(t, repo.lastList.OnlyActive)

	svc, _ = newTestService(admin(), repo)
	products, err = svc.List(context.Background(), domproduct.ListFilter{})
	require.NoError(t, err)
	require.Len(t, products, 4)
}

func TestList_InvalidSort(t *testing.T) {
	svc, _ := newTestService(nil, catalog())

	_, err := svc.List(context.Background(), domproduct.ListFilter{Sort: "popularity"})

	require.ErrorIs(t, err, domproduct.ErrInvalidSort)
}

func TestGetByID(t *testing.T) {
	svc, _ := newTestService(nil, catalog())

	p, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Classic Dill", p.Name)

	_, err = svc.GetByID(context.Background(), 4)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)

	_, err = svc.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)

	svc, _ = newTestService(admin(), catalog())
	p, err = svc.GetByID(context.Background(), 4)
	require.NoError(t, err)
	require.False(t, p.IsActive)
}

func TestCreate(t *testing.T) {
	repo := catalog()
	svc, hook := newTestService(admin(), repo)

	created, err := svc.Create(context.Background(), &domproduct.Product{
		Name:      "  Garlic Spears ",
		UnitPrice: decimal.RequireFromString("9.75"),
		Category:  "classic",
		IsActive:  true,
	})

	require.NoError(t, err)
	require.Equal(t, int64(5), created.ID)
	require.Equal(t, "Garlic Spears", created.Name)
	require.Equal(t, "product created", hook.LastEntry().Message)
}

func TestCreate_Validation(t *testing.T) {
	cases := []struct {
		name    string
		product domproduct.Product
		wantErr error
	}{
		{"blank name", domproduct.Product{Name: " ", UnitPrice: decimal.NewFromInt(1), Category: "c"}, domproduct.ErrInvalidName},
		{"zero price", domproduct.Product{Name: "n", UnitPrice: decimal.Zero, Category: "c"}, domproduct.ErrInvalidPrice},
		{"negative price", domproduct.Product{Name: "n", UnitPrice: decimal.NewFromInt(-1), Category: "c"}, domproduct.ErrInvalidPrice},
		{"missing category", domproduct.Product{Name: "n", UnitPrice: decimal.NewFromInt(1)}, domproduct.ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := catalog()
			svc, _ := newTestService(admin(), repo)
			p := tc.product

			_, err := svc.Create(context.Background(), &p)

			require.ErrorIs(t, err, tc.wantErr)
			require.Len(t, repo.products, 4)
		})
	}
}

func TestManageCatalog_NonAdminIsUnauthorized(t *testing.T) {
	for _, identity := range []*access.Identity{nil, customer()} {
		repo := catalog()
		svc, _ := newTestService(identity, repo)
		valid := &domproduct.Product{ID: 1, Name: "x", UnitPrice: decimal.NewFromInt(1), Category: "c"}

		_, err := svc.Create(context.Background(), valid)
		require.ErrorIs(t, err, access.ErrUnauthorized)

		_, err = svc.Update(context.Background(), valid)
		require.ErrorIs(t, err, access.ErrUnauthorized)

		err = svc.Delete(context.Background(), 1)
		require.ErrorIs(t, err, access.ErrUnauthorized)

		require.Equal(t, "Classic Dill", repo.products[1].Name)
	}
}

func TestUpdate(t *testing.T) {
	repo := catalog()
	svc, _ := newTestService(admin(), repo)

	updated, err := svc.Update(context.Background(), &domproduct.Product{
		ID:          1,
		Name:        "Classic Dill XL",
		Description: "bigger jar",
		UnitPrice:   decimal.RequireFromString("10.99"),
		Category:    "classic",
		Rating:      4.6,
		IsActive:    false,
	})

	require.NoError(t, err)
	require.Equal(t, "Classic Dill XL", updated.Name)
	require.True(t, updated.UnitPrice.Equal(decimal.RequireFromString("10.99")))
	require.False(t, repo.products[1].IsActive)

	_, err = svc.Update(context.Background(), &domproduct.Product{ID: 99, Name: "x", UnitPrice: decimal.NewFromInt(1), Category: "c"})
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)

	_, err = svc.Update(context.Background(), &domproduct.Product{ID: 2, Name: "", UnitPrice: decimal.NewFromInt(1), Category: "c"})
	require.ErrorIs(t, err, domproduct.ErrInvalidName)
	require.Equal(t, "Spicy Mango", repo.products[2].Name)
}

func TestDelete(t *testing.T) {
	repo := catalog()
	svc, _ := newTestService(admin(), repo)

	require.NoError(t, svc.Delete(context.Background(), 3))
	require.Equal(t, int64(3), repo.deletedID)

	err := svc.Delete(context.Background(), 3)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)
}
