package domain

import "context"

type ctxKey int

const userCtxKey ctxKey = 1

// WithUser stores the authenticated user id in a request context.
func WithUser(ctx context.Context, id UserID) context.Context {
	return context.WithValue(ctx, userCtxKey, id)
}

// UserFromCtx returns the authenticated user id, if any.
func UserFromCtx(ctx context.Context) (UserID, bool) {
	id, ok := ctx.Value(userCtxKey).(UserID)
	return id, ok && id != ""
}
