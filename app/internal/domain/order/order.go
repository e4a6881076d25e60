package order

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domcart "example.com/lara-pickles/app/internal/domain/cart"
)

type CustomerRef struct {
	Email string
	Phone string
}

// Line is frozen at order creation: UnitPrice is the catalog price captured
// at that moment and is never re-read.
type Line struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

type Order struct {
	ID              uuid.UUID
	Customer        CustomerRef
	Lines           []Line
	TotalAmount     decimal.Decimal
	DeliveryAddress string
	ContactPhone    string
	Notes           string
	Status          Status
	CreatedAt       time.Time
}

type DeliveryDetails struct {
	Address string
	Phone   string
	Notes   string
}

// New builds a PENDING order from a cart snapshot. Unit prices are rounded to
// precision decimal places when captured, so the total is exact at that
// precision.
func New(snap domcart.Snapshot, customer CustomerRef, details DeliveryDetails, id uuid.UUID, now time.Time, precision int32) (*Order, error) {
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}
	address := strings.TrimSpace(details.Address)
	phone := strings.TrimSpace(details.Phone)
	if address == "" || phone == "" {
		return nil, ErrMissingDeliveryInfo
	}

	o := &Order{
		ID:              id,
		Customer:        customer,
		Lines:           make([]Line, 0, len(snap.Lines)),
		TotalAmount:     decimal.Zero,
		DeliveryAddress: address,
		ContactPhone:    phone,
		Notes:           strings.TrimSpace(details.Notes),
		Status:          StatusPending,
		CreatedAt:       now.UTC(),
	}
	for _, sl := range snap.Lines {
		if sl.Quantity < 1 {
			return nil, fmt.Errorf("product %d has quantity %d: %w", sl.ProductID, sl.Quantity, domcart.ErrInvalidQuantity)
		}
		l := Line{
			ProductID: sl.ProductID,
			Name:      sl.Name,
			UnitPrice: sl.UnitPrice.Round(precision),
			Quantity:  sl.Quantity,
		}
		o.Lines = append(o.Lines, l)
		o.TotalAmount = o.TotalAmount.Add(l.Amount())
	}
	return o, nil
}

// LinesTotal recomputes the sum of captured line amounts. It must always equal
// TotalAmount.
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Transition moves the order to next if the lifecycle allows it. Nothing but
// Status is touched.
func (o *Order) Transition(next Status) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidTransition, ErrInvalidStatus, next)
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	return nil
}

func (o *Order) Clone() *Order {
	c := *o
	c.Lines = make([]Line, len(o.Lines))
	copy(c.Lines, o.Lines)
	return &c
}

type ListFilter struct {
	Status Status
}

func (f ListFilter) Matches(o *Order) bool {
	return f.Status == "" || o.Status == f.Status
}

// LookupQuery is the low-assurance self-service lookup: it trusts whatever
// contact data the caller types in.
type LookupQuery struct {
	Email string
	Phone string
}

func (q LookupQuery) Normalize() LookupQuery {
	return LookupQuery{
		Email: strings.ToLower(strings.TrimSpace(q.Email)),
		Phone: strings.TrimSpace(q.Phone),
	}
}

func (q LookupQuery) IsEmpty() bool {
	n := q.Normalize()
	return n.Email == "" && n.Phone == ""
}

// Matches is true when the email matches case-insensitively or the phone
// matches exactly, either the customer's recorded phone or the contact phone.
func (q LookupQuery) Matches(o *Order) bool {
	n := q.Normalize()
	if n.Email != "" && strings.EqualFold(strings.TrimSpace(o.Customer.Email), n.Email) {
		return true
	}
	if n.Phone != "" && (o.Customer.Phone == n.Phone || o.ContactPhone == n.Phone) {
		return true
	}
	return false
}

// SortNewestFirst orders by CreatedAt descending, breaking ties by id.
func SortNewestFirst(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID.String() > orders[j].ID.String()
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type Stats struct {
	TotalProducts int64
	TotalOrders   int64
	ByStatus      map[Status]int64
}
