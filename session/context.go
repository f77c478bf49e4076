package session

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithUserID attaches the authenticated user to ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext reads the authenticated user from ctx.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(ctxKey{})
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
