// Package middleware holds the HTTP middleware of the respond service.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/axisir/axisir-stack/common/httputil"
	commonmw "github.com/axisir/axisir-stack/common/middleware"
	"github.com/axisir/axisir-stack/respond/internal/service"
	"github.com/axisir/axisir-stack/respond/internal/tokens"
)

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
)

// Authenticator verifies a bearer token. *service.UserService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*tokens.Claims, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token and
// stores the caller's user id in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := httputil.BearerToken(r)
		if !ok {
			httputil.WriteJSONAPIUnauthorizedError(w, msgNoToken)
			return
		}

		claims, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			var se *service.Error
			if errors.As(err, &se) && se.Kind != service.KindUnauthorized {
				httputil.WriteJSONAPIInternalError(w, "An error occurred while checking token.")
				return
			}
			httputil.WriteJSONAPIUnauthorizedError(w, msgInvalidToken)
			return
		}

		ctx := commonmw.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
