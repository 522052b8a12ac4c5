package authctx

import (
	"context"

	"salonops-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser is the bearer-token-identified actor on a request.
type CurrentUser struct {
	ID    int64
	Email string
	Role  domain.UserRole
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}

// ActorID returns the current user's id, or zero when unauthenticated.
func ActorID(ctx context.Context) int64 {
	if u := FromContext(ctx); u != nil {
		return u.ID
	}
	return 0
}
