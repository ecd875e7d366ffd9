package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// Job type constants for cleanup jobs
const (
	JobTypeCleanupExpiredSessions = "cleanup:expired_sessions"
)

// SessionSweeper deletes expired sessions. service.AuthService implements it.
type SessionSweeper interface {
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// CleanupResult holds the result of a cleanup run
type CleanupResult struct {
	SessionsDeleted int64 `json:"sessions_deleted"`
}

// CleanupExpiredSessions is a periodic task that purges expired sessions.
type CleanupExpiredSessions struct {
	sweeper SessionSweeper
	logger  *slog.Logger

	// Last holds the result of the most recent successful run.
	Last CleanupResult
}

// NewCleanupExpiredSessions creates the session cleanup task.
func NewCleanupExpiredSessions(sweeper SessionSweeper, logger *slog.Logger) *CleanupExpiredSessions {
	return &CleanupExpiredSessions{sweeper: sweeper, logger: logger}
}

// Name identifies the task in logs.
func (j *CleanupExpiredSessions) Name() string {
	return JobTypeCleanupExpiredSessions
}

// Run deletes every session that has expired.
func (j *CleanupExpiredSessions) Run(ctx context.Context) error {
	n, err := j.sweeper.SweepExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	j.Last = CleanupResult{SessionsDeleted: n}
	if n > 0 {
		j.logger.Info("deleted expired sessions", "count", n)
	}
	return nil
}
