package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/emarzona/shortlinks/internal/app/service"
)

// ContextKey is the type of keys this package stores in a request context.
type ContextKey string

// SubjectKey holds the subject of a verified operator token.
const SubjectKey ContextKey = "subject"

// WithJWT requires an "Authorization: Bearer <token>" header carrying a
// valid stats token and stores its subject in the request context.
func WithJWT(auth service.AuthIface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="shortlinks"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseRawJWT(raw)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
