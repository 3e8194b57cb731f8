package http

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, " + requestIDHeader
)

// Headers a browser may read from a ticket download.
var corsExposeHeaders = strings.Join([]string{"Content-Disposition", ticketNumberHeader, requestIDHeader}, ", ")

// originPolicy is the parsed form of the configured origins. "*" admits any
// origin; blank entries are ignored.
type originPolicy struct {
	any     bool
	origins map[string]bool
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{origins: make(map[string]bool, len(origins))}
	for _, o := range origins {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[o] = true
		}
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// false when the origin is not admitted.
func (p originPolicy) allowOrigin(origin string) (string, bool) {
	if p.any {
		return "*", true
	}
	if p.origins[origin] {
		return origin, true
	}
	return "", false
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// CORS answers preflights for admitted origins, rejects preflights from the
// others with 403, and lets admitted browsers read the ticket headers.
// Requests without an Origin header pass through untouched.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		allow, ok := policy.allowOrigin(origin)
		switch {
		case !ok && isPreflight(r):
			writeError(w, http.StatusForbidden, codeForbidden, "origin not allowed")
			return
		case !ok:
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allow)
		if allow != "*" {
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if isPreflight(r) {
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
