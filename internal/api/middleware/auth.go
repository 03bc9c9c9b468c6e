package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cityrunners/server/internal/api/apierr"
	"github.com/cityrunners/server/internal/registry"
	"github.com/cityrunners/server/internal/services/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Auth validates the bearer token and cross-checks it against the
// caller's live registry record before admitting the request. A token
// the auth service still remembers is refused if the registry record
// carries a different (newer) one.
func Auth(authService *auth.Service, reg *registry.Game) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, err := authService.Authenticate(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			player, err := reg.GetPlayer(identity.Subject)
			if err != nil || player.Token != token {
				apierr.WriteError(w, auth.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose identity is not an admin. Must
// run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok || !identity.IsAdmin {
			apierr.WriteError(w, apierr.NewForbiddenError("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFrom retrieves the authenticated identity from the context
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(auth.Identity)
	return identity, ok
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
