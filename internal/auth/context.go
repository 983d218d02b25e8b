package auth

import "context"

type ctxKey string

const (
	userIDKey    ctxKey = "user_id"
	userEmailKey ctxKey = "email"
	userTierKey  ctxKey = "tier"
)

// SetUserContext sets user info into context (called by middleware).
func SetUserContext(ctx context.Context, id uint, email string, tier int) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id)
	ctx = context.WithValue(ctx, userEmailKey, email)
	ctx = context.WithValue(ctx, userTierKey, tier)
	return ctx
}

// GetUserIDFromContext retrieves userID safely.
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

func GetUserTierFromContext(ctx context.Context) (int, bool) {
	tier, ok := ctx.Value(userTierKey).(int)
	return tier, ok
}
