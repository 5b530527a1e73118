package middleware

import "net/http"

var securityHeaders = [][2]string{
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
	{"Referrer-Policy", "no-referrer"},
	{"X-DNS-Prefetch-Control", "off"},
	{"X-Download-Options", "noopen"},
	{"Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
	{"Surrogate-Control", "no-store"},
}

// SecurityHeaders sets framing, sniffing, referrer and no-cache headers on
// every response.
func SecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
