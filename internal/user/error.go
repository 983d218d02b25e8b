package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTierNotAllowed     = errors.New("account tier not allowed")

	// Postgres unique violation code, surfaced by lib/pq.
	PgUniqueViolation = "23505"
)
