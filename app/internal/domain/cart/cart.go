package cart

import (
	"sort"

	"github.com/shopspring/decimal"

	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

type Line struct {
	ProductID int64
	Quantity  int64
}

// Cart maps product ids to quantities for one owner. A product id appears at
// most once and a stored quantity is always at least 1.
type Cart struct {
	Owner string
	lines map[int64]int64
}

func New(owner string) *Cart {
	return &Cart{Owner: owner, lines: make(map[int64]int64)}
}

// FromLines rebuilds a cart from stored lines, merging duplicates and dropping
// non-positive quantities.
func FromLines(owner string, lines []Line) *Cart {
	c := New(owner)
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines[l.ProductID] += l.Quantity
		}
	}
	return c
}

// Add merges quantity into the line for productID and returns the new quantity.
func (c *Cart) Add(productID, quantity int64) (int64, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	c.lines[productID] += quantity
	return c.lines[productID], nil
}

// SetQuantity overwrites the quantity; zero or less removes the line. It
// reports whether the line is still present.
func (c *Cart) SetQuantity(productID, quantity int64) bool {
	if quantity <= 0 {
		delete(c.lines, productID)
		return false
	}
	c.lines[productID] = quantity
	return true
}

func (c *Cart) Remove(productID int64) {
	delete(c.lines, productID)
}

func (c *Cart) Quantity(productID int64) (int64, bool) {
	q, ok := c.lines[productID]
	return q, ok
}

// Lines returns a copy ordered by product id.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for id, q := range c.lines {
		out = append(out, Line{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.lines))
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	return ids
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Clear() {
	c.lines = make(map[int64]int64)
}

type DetailedLine struct {
	Line
	ProductName string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Available   bool
}

// View is the cart priced against the catalog at the moment it was built.
type View struct {
	Owner      string
	Lines      []DetailedLine
	GrandTotal decimal.Decimal
}

// Price resolves every line against products. Lines whose product is missing
// or inactive stay in the view, marked unavailable and excluded from the total.
func (c *Cart) Price(products map[int64]*domproduct.Product) *View {
	v := &View{Owner: c.Owner, Lines: make([]DetailedLine, 0, len(c.lines)), GrandTotal: decimal.Zero}
	for _, l := range c.Lines() {
		dl := DetailedLine{Line: l, LineTotal: decimal.Zero}
		if p, ok := products[l.ProductID]; ok && p.IsActive {
			dl.ProductName = p.Name
			dl.UnitPrice = p.UnitPrice
			dl.LineTotal = p.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
			dl.Available = true
			v.GrandTotal = v.GrandTotal.Add(dl.LineTotal)
		}
		v.Lines = append(v.Lines, dl)
	}
	return v
}

func (v *View) Line(productID int64) (DetailedLine, bool) {
	for _, l := range v.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return DetailedLine{}, false
}
