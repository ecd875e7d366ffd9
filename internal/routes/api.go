package routes

import (
	"net/http"

	"github.com/dukerupert/shelf/internal/middleware"
	"github.com/dukerupert/shelf/internal/router"
)

// RegisterAPIRoutes registers the JSON API. Everything except the
// credential endpoints and the country list requires a session.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Credential endpoints are rate limited per client IP
	var authMW []router.Middleware
	if deps.AuthRateLimiter != nil {
		authMW = append(authMW, deps.AuthRateLimiter.Middleware)
	}
	auth := r.Group(authMW...)
	auth.Post("/api/auth/signup", deps.AuthHandler.SignUp, middleware.MaxBodySize())
	auth.Post("/api/auth/signin", deps.AuthHandler.SignIn, middleware.MaxBodySize())
	r.Post("/api/auth/signout", deps.AuthHandler.SignOut)
	r.Get("/api/auth/session", deps.AuthHandler.Session)

	r.Get("/api/profile/countries", deps.ProfileHandler.Countries)

	// Owner-scoped routes
	owner := r.Group(middleware.RequireSession)
	owner.Get("/api/products", deps.ProductHandler.List)
	owner.Post("/api/products", deps.ProductHandler.Create, middleware.MaxBodySize())
	owner.Delete("/api/products/{id}", deps.ProductHandler.Delete)

	owner.Get("/api/dashboard", deps.DashboardHandler.Show)
	owner.Get("/api/dashboard/categories", deps.DashboardHandler.Categories)
	owner.Get("/api/dashboard/stats", deps.DashboardHandler.Stats)

	owner.Get("/api/profile", deps.ProfileHandler.Show)
	owner.Put("/api/profile", deps.ProfileHandler.Update, middleware.MaxBodySize())
	owner.Post("/api/profile/image", deps.ProfileHandler.UploadImage, middleware.MaxBodySize(middleware.UploadMaxBodySize))
}

// RegisterOpsRoutes registers health, metrics and uploaded-file routes.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/healthz", deps.HealthHandler.Healthz)
	if deps.MetricsHandler != nil {
		r.Handle(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	if deps.UploadsDir != "" {
		r.Static("/uploads/", deps.UploadsDir)
	}
}
