package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/auth"
	"github.com/mmynk/osusu/internal/models"
)

type contextKey string

const callerKey contextKey = "caller"

// GetUser returns the authenticated caller, or the zero UserRef outside RequireAuth.
func GetUser(ctx context.Context) models.UserRef {
	user, _ := ctx.Value(callerKey).(models.UserRef)
	return user
}

// GetUserID is GetUser(ctx).ID.
func GetUserID(ctx context.Context) string {
	return GetUser(ctx).ID
}

// WithClaims stores the identity from validated claims on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	noteCaller(ctx, claims.UserID())
	return context.WithValue(ctx, callerKey, claims.Ref())
}

// RequireAuth rejects calls without a valid "Authorization: Bearer <jwt>" header with
// CodeUnauthenticated.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			claims, err := bearerClaims(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithClaims(ctx, claims), req)
		}
	}
}

func bearerClaims(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if token = strings.TrimSpace(token); !ok || token == "" {
		return nil, auth.ErrInvalidToken
	}
	return jwtManager.Validate(token)
}
