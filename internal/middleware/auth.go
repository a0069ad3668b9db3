package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tipsplit/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionIDKey is the context key for storing the caller's session ID.
const SessionIDKey contextKey = "session_id"

// GetSessionID extracts the session ID from the context.
// Returns empty string if not found.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// WithSessionID returns a copy of ctx carrying the session ID. It also
// reports the ID to an enclosing LoggingInterceptor.
func WithSessionID(ctx context.Context, id string) context.Context {
	if slot, ok := ctx.Value(sessionSlotKey{}).(*string); ok {
		*slot = id
	}
	return context.WithValue(ctx, SessionIDKey, id)
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireSession returns an interceptor that validates session tokens on the
// given procedures and adds the session ID to the request context. Other
// procedures pass through untouched.
func RequireSession(tokens *auth.TokenManager, procedures map[string]bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !procedures[req.Spec().Procedure] {
				return next(ctx, req)
			}

			tokenString, err := BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSessionID(ctx, claims.SessionID), req)
		}
	}
}
