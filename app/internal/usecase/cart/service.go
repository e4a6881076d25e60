package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
	domcart "example.com/lara-pickles/app/internal/domain/cart"
	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

type CartRepository interface {
	domcart.Repository
}

type ProductCatalog interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error)
}

// Service is the cart of whoever the session provider says is calling. Every
// method re-resolves the caller and asks the gate first.
type Service struct {
	cartRepo CartRepository
	catalog  ProductCatalog
	sessions access.SessionProvider
	log      logrus.FieldLogger
}

func NewService(cartRepo CartRepository, catalog ProductCatalog, sessions access.SessionProvider, log logrus.FieldLogger) *Service {
	return &Service{
		cartRepo: cartRepo,
		catalog:  catalog,
		sessions: sessions,
		log:      log,
	}
}

func (s *Service) AddItem(ctx context.Context, productID, quantity int64) (*domcart.View, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, domcart.ErrInvalidQuantity
	}

	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domproduct.ErrProductNotFound
	}

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	newQty, err := c.Add(productID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SetItem(ctx, owner, productID, newQty); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"owner": owner, "product_id": productID, "quantity": newQty}).Debug("cart item added")
	return s.price(ctx, c)
}

// SetQuantity overwrites a line. Zero or negative removes it, and removing a
// line that is not there is not an error.
func (s *Service) SetQuantity(ctx context.Context, productID, quantity int64) (*domcart.View, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if _, ok := c.Quantity(productID); ok {
			c.Remove(productID)
			if err := s.cartRepo.RemoveItem(ctx, owner, productID); err != nil {
				return nil, err
			}
		}
		return s.price(ctx, c)
	}

	if _, ok := c.Quantity(productID); !ok {
		p, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, domproduct.ErrProductNotFound
		}
	}
	c.SetQuantity(productID, quantity)
	if err := s.cartRepo.SetItem(ctx, owner, productID, quantity); err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

func (s *Service) RemoveItem(ctx context.Context, productID int64) (*domcart.View, error) {
	return s.SetQuantity(ctx, productID, 0)
}

func (s *Service) GetCart(ctx context.Context) (*domcart.View, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, c)
}

// LineTotal is quantity times the current catalog price, zero when the
// product is not in the cart.
func (s *Service) LineTotal(ctx context.Context, productID int64) (decimal.Decimal, error) {
	v, err := s.GetCart(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	line, ok := v.Line(productID)
	if !ok {
		return decimal.Zero, nil
	}
	return line.LineTotal, nil
}

func (s *Service) GrandTotal(ctx context.Context) (decimal.Decimal, error) {
	v, err := s.GetCart(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return v.GrandTotal, nil
}

func (s *Service) Snapshot(ctx context.Context) (domcart.Snapshot, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return domcart.Snapshot{}, err
	}
	return LoadSnapshot(ctx, s.cartRepo, s.catalog, owner)
}

type ItemLister interface {
	ListItems(ctx context.Context, owner string) ([]domcart.Line, error)
}

type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error)
}

// LoadSnapshot reads owner's cart and resolves it against the catalog. The
// caller is responsible for authorizing access to owner's cart.
func LoadSnapshot(ctx context.Context, items ItemLister, catalog ProductLookup, owner string) (domcart.Snapshot, error) {
	lines, err := items.ListItems(ctx, owner)
	if err != nil {
		return domcart.Snapshot{}, err
	}
	c := domcart.FromLines(owner, lines)
	products, err := resolveProducts(ctx, catalog, c)
	if err != nil {
		return domcart.Snapshot{}, err
	}
	return c.Snapshot(products)
}

func resolveProducts(ctx context.Context, catalog ProductLookup, c *domcart.Cart) (map[int64]*domproduct.Product, error) {
	if c.IsEmpty() {
		return map[int64]*domproduct.Product{}, nil
	}
	products, err := catalog.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	return domproduct.IndexByID(products), nil
}

func (s *Service) Clear(ctx context.Context) error {
	owner, err := s.owner(ctx)
	if err != nil {
		return err
	}
	return s.cartRepo.Clear(ctx, owner)
}

func (s *Service) owner(ctx context.Context) (string, error) {
	id, p := access.Resolve(ctx, s.sessions)
	owner := ""
	if id != nil {
		owner = id.Subject
	}
	if err := access.Authorize(p, access.OpManageCart, owner); err != nil {
		return "", err
	}
	return owner, nil
}

func (s *Service) load(ctx context.Context, owner string) (*domcart.Cart, error) {
	items, err := s.cartRepo.ListItems(ctx, owner)
	if err != nil {
		return nil, err
	}
	return domcart.FromLines(owner, items), nil
}

func (s *Service) price(ctx context.Context, c *domcart.Cart) (*domcart.View, error) {
	products, err := resolveProducts(ctx, s.catalog, c)
	if err != nil {
		return nil, err
	}
	return c.Price(products), nil
}
