package middleware

import (
	"net"
	"net/http"
)

// WithSubnet only lets through requests whose X-Real-IP header belongs to
// subnet, given in CIDR notation. An empty subnet rejects everything.
func WithSubnet(subnet string) func(next http.Handler) http.Handler {
	_, trusted, err := net.ParseCIDR(subnet)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err != nil || trusted == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			ip := net.ParseIP(r.Header.Get("X-Real-IP"))
			if ip == nil || !trusted.Contains(ip) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
