package middleware

import (
	"net/http"

	"github.com/kbukum/opkit/util"
)

// DefaultMaxBodySize is used when the configured size cannot be parsed.
const DefaultMaxBodySize = 10 << 20

// BodySizeLimit caps the request body at maxSize ("10MB", "512KB", ...).
// Reading past the limit fails; BodyCapture reports it as 413.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, DefaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
