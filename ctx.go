package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-loan-auth/middleware/jwtware"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// DefaultClaimsKey is the fiber locals key used by the protected route middleware.
const DefaultClaimsKey = "user"

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the claims in the given context
func WithClaimsContext(r context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the claims from the standard context
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*JWTClaims)
	return raw, ok
}

// GetFiberClaims extracts the claims stored by the protected route middleware.
func GetFiberClaims(c *fiber.Ctx, key string) (*JWTClaims, bool) {
	if key == "" {
		key = DefaultClaimsKey
	}
	claims, ok := c.Locals(key).(*JWTClaims)
	return claims, ok
}

// ClaimsContextEnricher stores validated claims in the request context.
// It plugs into jwtware.Config.ContextEnricher.
func ClaimsContextEnricher(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		return WithClaimsContext(ctx, jwtClaims)
	}
	return ctx
}
