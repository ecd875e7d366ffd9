package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Recover turns a panic into a 500 response and logs the stack.
// Place it outside telemetry.SentryMiddleware so Sentry sees the panic first.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			GetLogger(r.Context()).Error("panic recovered",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			respondInternalError(w, r, fmt.Errorf("panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}
