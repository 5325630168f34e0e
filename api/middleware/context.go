package middleware

import (
	"context"

	"github.com/angelmondragon/fastfood-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxRoles       contextKey = "roles"
	ctxEmail       contextKey = "email"
	ctxDisplayName contextKey = "display_name"
	ctxAccessID    contextKey = "access_id"
	ctxCartKey     contextKey = "cart_key"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RolesFromContext(ctx context.Context) []enums.Role {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxRoles).([]enums.Role); ok {
		return v
	}
	return nil
}

// HasRole reports whether the authenticated caller holds role.
func HasRole(ctx context.Context, role enums.Role) bool {
	for _, r := range RolesFromContext(ctx) {
		if r == role {
			return true
		}
	}
	return false
}

func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

// DisplayNameFromContext returns the name carried by the access token.
func DisplayNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDisplayName).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the access token's session id (jti).
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// CartKeyFromContext returns the key resolved by the CartKey middleware.
func CartKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRoles injects the caller's roles into the context.
func WithRoles(ctx context.Context, roles ...enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRoles, roles)
}

// WithCartKey injects a resolved cart key into the context.
func WithCartKey(ctx context.Context, key string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartKey, key)
}
