package access

import "errors"

var ErrUnauthorized = errors.New("unauthorized")

type Operation string

const (
	OpBrowseCatalog   Operation = "browse_catalog"
	OpLookupOrders    Operation = "lookup_orders"
	OpManageCart      Operation = "manage_cart"
	OpPlaceOrder      Operation = "place_order"
	OpListOrders      Operation = "list_orders"
	OpViewOrder       Operation = "view_order"
	OpTransitionOrder Operation = "transition_order"
	OpManageCatalog   Operation = "manage_catalog"
	OpViewDashboard   Operation = "view_dashboard"
)

// CanPerform decides whether p may run op. resourceOwner is the subject that
// owns the resource and only matters for owner-scoped operations (cart, order
// placement). Admins are not customers: they get no cart of their own.
func CanPerform(p Principal, op Operation, resourceOwner string) bool {
	switch op {
	case OpBrowseCatalog, OpLookupOrders:
		return p.Role.IsValid()
	case OpManageCart, OpPlaceOrder:
		return p.Role == RoleCustomer && p.Subject != "" && resourceOwner == p.Subject
	case OpListOrders, OpViewOrder, OpTransitionOrder, OpManageCatalog, OpViewDashboard:
		return p.Role == RoleAdmin
	default:
		return false
	}
}

func Authorize(p Principal, op Operation, resourceOwner string) error {
	if !CanPerform(p, op, resourceOwner) {
		return ErrUnauthorized
	}
	return nil
}
