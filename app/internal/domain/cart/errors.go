package cart

import "errors"

var ErrInvalidQuantity = errors.New("quantity must be at least 1")
