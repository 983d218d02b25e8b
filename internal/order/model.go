package order

import (
	"time"

	"github.com/google/uuid"
)

// Status follows the store's order lifecycle. A draft order is the user's
// cart; it is the only status that gets auto-deleted when emptied.
type Status int

const (
	StatusCart      Status = 1
	StatusPreparing Status = 2
	StatusShipped   Status = 3
	StatusDelivered Status = 4
	StatusCancelled Status = 5
)

func (s Status) Valid() bool {
	return s >= StatusCart && s <= StatusCancelled
}

type Order struct {
	ID        uint
	UserID    uint
	AddressID *uuid.UUID
	Status    Status
	Total     int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []Line
}

// Line is one order line. UnitPrice is a snapshot taken when the line was
// last priced; LineTotal is always UnitPrice * Quantity.
type Line struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   int64
	LineTotal   int64
}

type LineRequest struct {
	ProductID uint
	Quantity  int
}

type CreateOrderParams struct {
	UserID    uint
	AddressID *uuid.UUID
	Status    Status
	Lines     []LineRequest
}

type UpdateOrderParams struct {
	Status    *Status
	AddressID *uuid.UUID
	Lines     []LineRequest
}

type LinePatch struct {
	Quantity  *int
	UnitPrice *int64
}

// Actor identifies who performs a line-level edit. Administrators may touch
// any order; everyone else only their own.
type Actor struct {
	UserID uint
	Admin  bool
}

// LineUpdateResult reports the outcome of a single-line edit, including the
// order-level side effects.
type LineUpdateResult struct {
	Removed      bool
	OrderDeleted bool
	Line         *Line
	OrderTotal   int64
}
