package middleware

import (
	"context"
	"net/http"
	"time"
)

// Body size limits.
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize bounds JSON request bodies.
	DefaultMaxBodySize = 1 * MB

	// UploadMaxBodySize admits a 5MB image plus multipart framing.
	UploadMaxBodySize = 6 * MB
)

// DefaultTimeout bounds request processing when Timeout is given no duration.
const DefaultTimeout = 30 * time.Second

// MaxBodySize rejects bodies over maxBytes (DefaultMaxBodySize when omitted)
// with 413. Declared lengths are checked up front; chunked bodies are cut
// off by http.MaxBytesReader, which handlers see as *http.MaxBytesError.
func MaxBodySize(maxBytes ...int64) func(http.Handler) http.Handler {
	limit := int64(DefaultMaxBodySize)
	if len(maxBytes) > 0 && maxBytes[0] > 0 {
		limit = maxBytes[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				respondTooLarge(w, r, "Request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout attaches a deadline (DefaultTimeout when omitted) to the request
// context. Store and storage calls observe it and fail with
// context.DeadlineExceeded, which handlers report like any other error.
func Timeout(timeout ...time.Duration) func(http.Handler) http.Handler {
	d := DefaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		d = timeout[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
