package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID    string
	Email string
	Role  string
	// User is the full account record resolved by the Authenticator.
	User any
}

// Authenticator resolves a bearer token to a Principal. Errors should be
// *apperr.Error values; anything else is reported as 401.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the caller set by Authenticate.
func PrincipalFromCtx(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RoleFromCtx returns the authenticated caller's role.
func RoleFromCtx(r *http.Request) (string, bool) {
	p, ok := PrincipalFromCtx(r)
	if !ok {
		return "", false
	}
	return p.Role, true
}

// Authenticate rejects requests without a valid bearer token and attaches the
// resolved Principal to the context. Browsers cannot set headers on websocket
// handshakes, so upgrade requests may pass the token as ?access_token=.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w)
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				var appErr *apperr.Error
				if !errors.As(err, &appErr) {
					response.Unauthorized(w)
					return
				}
				response.Fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("access_token")
	}
	return ""
}
