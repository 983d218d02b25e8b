package user

import "time"

// Tier is the account type of a user.
type Tier int

const (
	TierAdmin     Tier = 1
	TierRetail    Tier = 2
	TierWholesale Tier = 3
)

func (t Tier) Valid() bool {
	return t >= TierAdmin && t <= TierWholesale
}

type User struct {
	ID        uint
	Email     string
	Password  string
	Name      string
	Tier      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Tier     Tier
}
