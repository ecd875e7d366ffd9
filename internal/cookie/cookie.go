// Package cookie writes the session cookie.
package cookie

import (
	"net/http"
	"time"
)

const SessionCookieName = "shelf_session"

// Config scopes the session cookie. An empty Domain binds it to the request
// host. Secure should be set whenever the API is served over HTTPS.
type Config struct {
	Domain string
	Secure bool
}

func NewConfig(domain string, secure bool) *Config {
	return &Config{Domain: domain, Secure: secure}
}

// session is the HttpOnly, SameSite=Lax cookie shared by set and clear.
func (c *Config) session(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSession stores token until expires.
func (c *Config) SetSession(w http.ResponseWriter, token string, expires time.Time) {
	ck := c.session(token)
	ck.Expires = expires.UTC()
	http.SetCookie(w, ck)
}

// ClearSession tells the browser to drop the cookie.
func (c *Config) ClearSession(w http.ResponseWriter) {
	ck := c.session("")
	ck.MaxAge = -1
	http.SetCookie(w, ck)
}

// Get returns the named cookie's value, or "" when absent.
func Get(r *http.Request, name string) string {
	if ck, err := r.Cookie(name); err == nil {
		return ck.Value
	}
	return ""
}
