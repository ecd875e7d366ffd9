package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(log *[]string, name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*log = append(*log, name)
			next.ServeHTTP(w, r)
		})
	}
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var log []string
	r := New(tag(&log, "router"))
	r.Use(tag(&log, "outer"))
	owner := r.Group(tag(&log, "group"))
	owner.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		log = append(log, "handler")
	}, tag(&log, "route"))

	rec := serve(r, http.MethodGet, "/api/products")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"outer", "router", "group", "route", "handler"}, log)
}

func TestRouter_GroupDoesNotLeak(t *testing.T) {
	var log []string
	r := New()
	r.Group(tag(&log, "owner")).Get("/api/profile", func(http.ResponseWriter, *http.Request) {})
	r.Get("/api/profile/countries", func(http.ResponseWriter, *http.Request) {})

	serve(r, http.MethodGet, "/api/profile/countries")
	assert.Empty(t, log)

	serve(r, http.MethodGet, "/api/profile")
	assert.Equal(t, []string{"owner"}, log)
}

func TestRouter_OuterSeesUnmatched(t *testing.T) {
	var log []string
	r := New()
	r.Use(tag(&log, "outer"))
	r.Delete("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/missing").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodGet, "/api/products/1").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/api/products/1").Code)
	assert.Len(t, log, 3)
}

func TestRouter_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "a.png"), []byte("png"), 0o644))

	r := New()
	r.Static("/uploads/", dir)

	rec := serve(r, http.MethodGet, "/uploads/profiles/a.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/uploads/profiles/").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/uploads/nope.png").Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		ParseOrigins(" https://a.example.com/, ,https://b.example.com"))
}
