package order

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMissingDeliveryInfo = errors.New("delivery address and contact phone are required")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrMissingQuery        = errors.New("email or phone is required")
)
