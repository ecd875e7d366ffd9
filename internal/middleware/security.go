package middleware

import "net/http"

// APIContentSecurityPolicy allows nothing but images, which is all the
// uploads route serves.
const APIContentSecurityPolicy = "default-src 'none'; img-src 'self' https:; frame-ancestors 'none'; base-uri 'none'"

const hstsOneYear = "max-age=31536000; includeSubDomains"

// SecurityHeadersConfig selects the response security headers.
type SecurityHeadersConfig struct {
	// ContentSecurityPolicy defaults to APIContentSecurityPolicy.
	ContentSecurityPolicy string

	// HSTS sends Strict-Transport-Security. Enable only behind TLS.
	HSTS bool
}

// DefaultSecurityHeadersConfig is the production configuration.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: APIContentSecurityPolicy,
		HSTS:                  true,
	}
}

// SecurityHeaders sets the same fixed header set on every response.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	csp := config.ContentSecurityPolicy
	if csp == "" {
		csp = APIContentSecurityPolicy
	}

	headers := [][2]string{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Content-Security-Policy", csp},
		{"Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()"},
	}
	if config.HSTS {
		headers = append(headers, [2]string{"Strict-Transport-Security", hstsOneYear})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range headers {
				h.Set(kv[0], kv[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
