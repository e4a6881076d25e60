package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

type SnapshotLine struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Snapshot is a detached copy of a cart with resolved product data, used to
// build an order. Nothing in it points back at the live cart.
type Snapshot struct {
	Owner string
	Lines []SnapshotLine
}

func (s Snapshot) IsEmpty() bool { return len(s.Lines) == 0 }

// Snapshot copies the cart. Every line must resolve to an active product.
func (c *Cart) Snapshot(products map[int64]*domproduct.Product) (Snapshot, error) {
	s := Snapshot{Owner: c.Owner, Lines: make([]SnapshotLine, 0, len(c.lines))}
	for _, l := range c.Lines() {
		p, ok := products[l.ProductID]
		if !ok || !p.IsActive {
			return Snapshot{}, fmt.Errorf("product %d: %w", l.ProductID, domproduct.ErrProductNotFound)
		}
		s.Lines = append(s.Lines, SnapshotLine{
			ProductID: l.ProductID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return s, nil
}
