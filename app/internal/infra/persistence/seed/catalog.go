package seed

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

const imageRef = "https://images.unsplash.com/photo-1618160702438-9b02ab6515c9?w=400&h=300&fit=crop"

// DefaultCatalog is the launch range of the shop.
func DefaultCatalog() []*domproduct.Product {
	return []*domproduct.Product{
		{
			Name:        "Classic Dill Pickles",
			Description: "Traditional dill pickles with a perfect crunch and authentic flavor. Made with fresh cucumbers and aromatic dill.",
			UnitPrice:   decimal.RequireFromString("8.99"),
			Category:    "classic",
			Rating:      4.9,
		},
		{
			Name:        "Spicy Jalapeño Pickles",
			Description: "Fire up your taste buds with these premium spicy pickles. Perfect heat level with authentic jalapeño flavor.",
			UnitPrice:   decimal.RequireFromString("9.99"),
			Category:    "spicy",
			Rating:      4.8,
		},
		{
			Name:        "Sweet Bread & Butter",
			Description: "Sweet and tangy with a hint of caramelized onion. A perfect balance of flavors that melts in your mouth.",
			UnitPrice:   decimal.RequireFromString("7.99"),
			Category:    "sweet",
			Rating:      4.9,
		},
		{
			Name:        "Garlic Kosher Pickles",
			Description: "Rich garlic flavor infused in every premium bite. Traditional kosher preparation with modern twist.",
			UnitPrice:   decimal.RequireFromString("9.49"),
			Category:    "garlic",
			Rating:      4.7,
		},
		{
			Name:        "Mango Pickle Delight",
			Description: "Authentic Hyderabadi mango pickle with traditional spices. A burst of tangy and spicy flavors.",
			UnitPrice:   decimal.RequireFromString("10.99"),
			Category:    "traditional",
			Rating:      4.8,
		},
		{
			Name:        "Lemon Pickle Special",
			Description: "Tangy lemon pickle with aromatic spices. Made with fresh lemons and traditional Hyderabadi recipes.",
			UnitPrice:   decimal.RequireFromString("8.49"),
			Category:    "traditional",
			Rating:      4.6,
		},
	}
}

type ProductWriter interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error)
}

// Catalog inserts DefaultCatalog into an empty store. A store that already
// has products is left alone.
func Catalog(ctx context.Context, repo ProductWriter, log logrus.FieldLogger) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.WithField("products", n).Debug("catalog already populated, skipping seed")
		return 0, nil
	}

	inserted := 0
	for _, p := range DefaultCatalog() {
		p.ImageRef = imageRef
		p.IsActive = true
		if _, err := repo.Create(ctx, p); err != nil {
			return inserted, err
		}
		inserted++
	}
	log.WithField("products", inserted).Info("catalog seeded")
	return inserted, nil
}
