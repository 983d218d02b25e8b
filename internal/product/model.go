package product

import "time"

type Product struct {
	ID             uint
	Name           string
	Description    *string
	Price          int64 // retail unit price, smallest currency unit
	WholesalePrice int64
	CategoryID     uint
	ImageURL       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type NewProductInput struct {
	Name           string
	Description    *string
	Price          int64
	WholesalePrice int64
	CategoryID     uint
	ImageURL       *string
}

type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *int64
	WholesalePrice *int64
	CategoryID     *uint
	ImageURL       *string
}

type ProductQueryOptions struct {
	Search     *string
	CategoryID *uint
	SortField  string // "price" or "name"
	SortDesc   bool
	Limit      *int32
	Page       *int32
}
