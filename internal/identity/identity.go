// Package identity resolves the owner id that remote rows are created under.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the caller's user id
const HeaderUserID = "X-User-ID"

// ErrNoIdentity means no user is signed in. Callers fall back to local-only behavior.
var ErrNoIdentity = errors.New("no user identity")

// Provider returns the current user's id
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Static always returns the same id. An empty Static has no identity.
type Static string

func (s Static) CurrentUserID(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoIdentity
	}
	return string(s), nil
}

type ctxKey struct{}

// WithUserID attaches a user id to ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// HeaderProvider reads the id that Middleware stored on the request context,
// falling back to Fallback when the request carried none
type HeaderProvider struct {
	Fallback Provider
}

func (h HeaderProvider) CurrentUserID(ctx context.Context) (string, error) {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id, nil
	}
	if h.Fallback != nil {
		return h.Fallback.CurrentUserID(ctx)
	}
	return "", ErrNoIdentity
}

// Middleware copies the X-User-ID header onto the request context
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
			c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), id))
		}
		c.Next()
	}
}
