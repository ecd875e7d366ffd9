package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

const flushTimeout = 2 * time.Second

// SentryConfig configures error reporting. Zero SampleRate means 1.0.
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

var enabled atomic.Bool

// InitSentry starts the Sentry client. Reporting stays off when disabled or
// when no DSN is set; every helper here is then a no-op. The returned
// function flushes buffered events.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	enabled.Store(false)
	noop := func() {}

	if !cfg.Enabled || cfg.DSN == "" {
		logger.Info("sentry disabled", "dsn_set", cfg.DSN != "")
		return noop, nil
	}

	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       rate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		BeforeSend:       scrubSession,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	enabled.Store(true)

	logger.Info("sentry enabled", "environment", cfg.Environment, "sample_rate", rate)
	return func() { sentry.Flush(flushTimeout) }, nil
}

// scrubSession drops session tokens, which travel as a cookie or bearer header.
func scrubSession(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Cookies = ""
		delete(event.Request.Headers, "Authorization")
		delete(event.Request.Headers, "Cookie")
	}
	return event
}

func IsEnabled() bool { return enabled.Load() }

// CaptureError reports err on the global hub. Used outside requests.
func CaptureError(err error, extras ...map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}
	capture(sentry.CurrentHub(), err, extras...)
}

// CaptureErrorFromContext reports err on the request's hub so the request
// and user set by the middlewares below are attached.
func CaptureErrorFromContext(ctx context.Context, err error, extras map[string]interface{}) {
	if !IsEnabled() || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	capture(hub, err, extras)
}

func capture(hub *sentry.Hub, err error, extras ...map[string]interface{}) {
	hub.WithScope(func(scope *sentry.Scope) {
		for _, m := range extras {
			for k, v := range m {
				scope.SetExtra(k, v)
			}
		}
		hub.CaptureException(err)
	})
}

// StartSpan opens a tracing span under ctx. The returned func finishes it.
func StartSpan(ctx context.Context, op, description string) (context.Context, func()) {
	if !IsEnabled() {
		return ctx, func() {}
	}
	span := sentry.StartSpan(ctx, op, sentry.WithDescription(description))
	return span.Context(), span.Finish
}

// SentryMiddleware puts a per-request hub on the context and reports
// panics before re-raising them for Recover.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: flushTimeout})
	return func(next http.Handler) http.Handler {
		wrapped := h.Handle(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// UserInfo identifies the signed-in user on reported events.
type UserInfo struct {
	ID    string
	Email string
}

type UserContextExtractor func(ctx context.Context) *UserInfo

// SentryContextMiddleware tags the request hub with the user returned by
// extract. It must run after the session is loaded.
func SentryContextMiddleware(extract UserContextExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() || extract == nil {
				next.ServeHTTP(w, r)
				return
			}
			if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
				if user := extract(r.Context()); user != nil {
					hub.Scope().SetUser(sentry.User{ID: user.ID, Email: user.Email})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
