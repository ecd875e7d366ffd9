package routes

import (
	"net/http"

	"github.com/dukerupert/shelf/internal/handler/api"
	"github.com/dukerupert/shelf/internal/middleware"
)

// APIDeps contains dependencies for API routes
type APIDeps struct {
	// Auth (signup, signin, signout, session)
	AuthHandler *api.AuthHandler

	// Products and dashboard
	ProductHandler   *api.ProductHandler
	DashboardHandler *api.DashboardHandler

	// Profile (details, image upload, countries)
	ProfileHandler *api.ProfileHandler

	// AuthRateLimiter throttles the credential endpoints. Nil disables it.
	AuthRateLimiter *middleware.RateLimiter
}

// OpsDeps contains dependencies for operational endpoints
type OpsDeps struct {
	HealthHandler  *api.HealthHandler
	MetricsHandler http.Handler
	UploadsDir     string
}
