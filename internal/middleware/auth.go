package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/certportal/internal/auth"
	"github.com/vaughan-dsouza/certportal/internal/models"
	"github.com/vaughan-dsouza/certportal/internal/utils"
)

type ctxKey struct{}

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	Subject string
	Role    models.Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

const bearerPrefix = "Bearer "

// Authenticate rejects the request with 401 unless it carries a valid
// "Bearer <token>" Authorization header. Every failure gets the same body.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				unauthenticated(w)
				return
			}

			token := strings.TrimSpace(header[len(bearerPrefix):])
			if token == "" {
				unauthenticated(w)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				unauthenticated(w)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{Subject: claims.Subject, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authenticate. Non-admin callers get 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			unauthenticated(w)
			return
		}
		if id.Role != models.RoleAdmin {
			utils.WriteError(w, nil, models.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthenticated(w http.ResponseWriter) {
	utils.WriteError(w, nil, models.ErrUnauthenticated)
}
