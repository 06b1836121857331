// Package middleware holds the API's request middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
	"github.com/MrJamesThe3rd/upkeep/internal/auth"
	"github.com/MrJamesThe3rd/upkeep/internal/http/respond"
)

type Verifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Authenticate attaches the bearer token's principal to the request context. Requests without an
// Authorization header continue as anonymous; the access gate decides what they may do. A header
// that is present but invalid is rejected.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				respond.Error(w, r, apperr.ErrUnauthorized)
				return
			}

			p, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				respond.Error(w, r, apperr.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}
