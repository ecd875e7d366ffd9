package internal

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STORAGE_PROVIDER", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.NATS.URL)
	assert.Empty(t, cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.IsProd())
}

func TestNewConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENV", "staging")
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("DATABASE_URL", "postgres://db.internal/shelf")
	t.Setenv("STORAGE_PROVIDER", "local")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
}

func TestNewConfig_ProdRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "no database url",
			env:     map[string]string{"DATABASE_URL": ""},
			wantErr: "DATABASE_URL",
		},
		{
			name: "r2 without bucket",
			env: map[string]string{
				"DATABASE_URL":         "postgres://db.internal/shelf",
				"STORAGE_PROVIDER":     "r2",
				"R2_ACCOUNT_ID":        "acct",
				"R2_ACCESS_KEY_ID":     "key",
				"R2_SECRET_ACCESS_KEY": "secret",
				"R2_BUCKET_NAME":       "",
			},
			wantErr: "R2_BUCKET_NAME",
		},
		{
			name: "r2 without public url",
			env: map[string]string{
				"DATABASE_URL":         "postgres://db.internal/shelf",
				"STORAGE_PROVIDER":     "r2",
				"R2_ACCOUNT_ID":        "acct",
				"R2_ACCESS_KEY_ID":     "key",
				"R2_SECRET_ACCESS_KEY": "secret",
				"R2_BUCKET_NAME":       "avatars",
				"R2_PUBLIC_URL":        "",
			},
			wantErr: "R2_PUBLIC_URL",
		},
		{
			name: "gcs without bucket",
			env: map[string]string{
				"DATABASE_URL":     "postgres://db.internal/shelf",
				"STORAGE_PROVIDER": "gcs",
				"GCS_BUCKET":       "",
			},
			wantErr: "GCS_BUCKET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "prod")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfig_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("SMTP_PORT", "tls")
	t.Setenv("SENTRY_ENABLED", "maybe")
	t.Setenv("RATE_LIMIT_RPS", "5.5")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.Sentry.Enabled)
	assert.Equal(t, 5.5, cfg.RateLimit.RequestsPerSecond)
}

func TestNewConfig_ProdReportsAllMissing(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORAGE_PROVIDER", "gcs")
	t.Setenv("GCS_BUCKET", "")

	_, err := NewConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "GCS_BUCKET")
}

func TestNewLogger_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "prod", "debug")

	logger.Debug("hello", "owner_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "abc", entry["owner_id"])
	_, err := time.Parse(time.RFC3339Nano, entry["time"].(string))
	assert.NoError(t, err)
}

func TestNewLogger_DevFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "dev", "warn")

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
