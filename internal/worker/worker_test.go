package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	runs atomic.Int32
	err  error
}

func (t *countingTask) Name() string { return "count" }

func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	return t.err
}

type panicTask struct{}

func (panicTask) Name() string                  { return "panic" }
func (panicTask) Run(ctx context.Context) error { panic("boom") }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(Config{}, discardLogger())

	assert.NotEmpty(t, w.config.WorkerID)
	assert.Equal(t, time.Hour, w.config.Interval)
	assert.Equal(t, time.Minute, w.config.Timeout)
	assert.Equal(t, 1, w.config.MaxConcurrency)
}

func TestWorker_RunOnce_SurvivesFailures(t *testing.T) {
	failing := &countingTask{err: errors.New("db down")}
	ok := &countingTask{}
	w := NewWorker(Config{}, discardLogger(), failing, panicTask{}, ok)

	w.RunOnce(context.Background())

	assert.Equal(t, int32(1), failing.runs.Load())
	assert.Equal(t, int32(1), ok.runs.Load())
}

func TestWorker_Start_RunsUntilCancelled(t *testing.T) {
	task := &countingTask{}
	w := NewWorker(Config{Interval: 5 * time.Millisecond, RunOnStart: true}, discardLogger(), task)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
