package order

import "errors"

var (
	// -- Validation & Input --
	ErrAdminCannotPurchase = errors.New("administrator cannot purchase")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrEmptyOrder          = errors.New("order must have at least one line")

	// -- Resource State --
	ErrOrderNotFound = errors.New("order not found")
	ErrLineNotFound  = errors.New("order line not found")
	ErrCartNotFound  = errors.New("cart not found")
	ErrCartExists    = errors.New("user already has a draft order")

	// -- Access --
	ErrNotOrderOwner = errors.New("cannot access others' orders")
)
