package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweeperFunc func(ctx context.Context) (int64, error)

func (f sweeperFunc) SweepExpiredSessions(ctx context.Context) (int64, error) { return f(ctx) }

func TestCleanupExpiredSessions_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewCleanupExpiredSessions(sweeperFunc(func(ctx context.Context) (int64, error) {
		return 7, nil
	}), logger)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int64(7), job.Last.SessionsDeleted)
	assert.Equal(t, JobTypeCleanupExpiredSessions, job.Name())
}

func TestCleanupExpiredSessions_RunError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewCleanupExpiredSessions(sweeperFunc(func(ctx context.Context) (int64, error) {
		return 0, errors.New("db down")
	}), logger)

	err := job.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
