package product

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"example.com/lara-pickles/app/internal/domain/access"
	dom "example.com/lara-pickles/app/internal/domain/product"
)

type Service struct {
	repo     dom.Repository
	sessions access.SessionProvider
	log      logrus.FieldLogger
}

func NewService(repo dom.Repository, sessions access.SessionProvider, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, sessions: sessions, log: log}
}

func (s *Service) principal(ctx context.Context) access.Principal {
	_, p := access.Resolve(ctx, s.sessions)
	return p
}

// List is the storefront listing. Only admins see inactive products.
func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	p := s.principal(ctx)
	if err := access.Authorize(p, access.OpBrowseCatalog, ""); err != nil {
		return nil, err
	}
	if !filter.Sort.IsValid() {
		return nil, dom.ErrInvalidSort
	}
	if !p.Role.IsAdmin() {
		filter.OnlyActive = true
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*dom.Product{}
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	p := s.principal(ctx)
	if err := access.Authorize(p, access.OpBrowseCatalog, ""); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !p.Role.IsAdmin() {
		return nil, dom.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	if err := access.Authorize(s.principal(ctx), access.OpManageCatalog, ""); err != nil {
		return nil, err
	}
	normalize(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"product_id": created.ID, "name": created.Name}).Info("product created")
	return created, nil
}

// Update replaces every editable field of an existing product.
func (s *Service) Update(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	if err := access.Authorize(s.principal(ctx), access.OpManageCatalog, ""); err != nil {
		return nil, err
	}
	existed, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	normalize(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	existed.Name = p.Name
	existed.Description = p.Description
	existed.UnitPrice = p.UnitPrice
	existed.ImageRef = p.ImageRef
	existed.Category = p.Category
	existed.Rating = p.Rating
	existed.IsActive = p.IsActive

	updated, err := s.repo.Update(ctx, existed)
	if err != nil {
		return nil, err
	}
	s.log.WithField("product_id", updated.ID).Info("product updated")
	return updated, nil
}

// Delete removes a product from the catalog. Orders keep their captured line
// names and prices; carts holding it show the line as unavailable.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := access.Authorize(s.principal(ctx), access.OpManageCatalog, ""); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func normalize(p *dom.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageRef = strings.TrimSpace(p.ImageRef)
}
