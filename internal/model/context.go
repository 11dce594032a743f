package model

import "context"

// ContextManager moves the authenticated user id between middleware and
// handlers through the request context.
type ContextManager interface {
	SetUserIDToContext(ctx context.Context, userID string) context.Context
	GetUserIDFromContext(ctx context.Context) (string, bool)
}
