package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/shelf/internal/telemetry"
	"github.com/google/uuid"
)

// Task is a unit of background work run on every tick.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// Interval is how often the tasks run
	Interval time.Duration

	// Timeout bounds a single task run
	Timeout time.Duration

	// MaxConcurrency is the maximum number of tasks running at once
	MaxConcurrency int

	// RunOnStart runs every task once before the first tick
	RunOnStart bool
}

// Worker runs periodic maintenance tasks
type Worker struct {
	config Config
	tasks  []Task
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewWorker creates a new background worker
func NewWorker(config Config, logger *slog.Logger, tasks ...Task) *Worker {
	// Set defaults
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}

	return &Worker{
		config: config,
		tasks:  tasks,
		logger: logger,
	}
}

// Start runs the tasks on every tick until the context is cancelled, then
// waits for in-flight runs to finish.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"interval", w.config.Interval,
		"tasks", len(w.tasks),
		"max_concurrency", w.config.MaxConcurrency,
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Semaphore for concurrency control
	sem := make(chan struct{}, w.config.MaxConcurrency)

	if w.config.RunOnStart {
		w.dispatch(ctx, sem)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			w.wg.Wait()
			return ctx.Err()

		case <-ticker.C:
			w.dispatch(ctx, sem)
		}
	}
}

// dispatch starts each task unless the worker is at max concurrency.
func (w *Worker) dispatch(ctx context.Context, sem chan struct{}) {
	for _, task := range w.tasks {
		select {
		case sem <- struct{}{}:
			w.wg.Add(1)
			go func(task Task) {
				defer w.wg.Done()
				defer func() { <-sem }()
				w.runTask(ctx, task)
			}(task)
		default:
			w.logger.Debug("worker busy, skipping task", "task", task.Name())
		}
	}
}

// RunOnce runs every task synchronously. Used by tests and one-off commands.
func (w *Worker) RunOnce(ctx context.Context) {
	for _, task := range w.tasks {
		w.runTask(ctx, task)
	}
}

func (w *Worker) runTask(ctx context.Context, task Task) {
	taskCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("task panicked", "task", task.Name(), "panic", r)
			telemetry.CaptureError(fmt.Errorf("task %s panicked: %v", task.Name(), r), map[string]interface{}{"task": task.Name()})
		}
	}()

	start := time.Now()
	if err := task.Run(taskCtx); err != nil {
		w.logger.Error("task failed",
			"task", task.Name(),
			"worker_id", w.config.WorkerID,
			"error", err,
		)
		telemetry.CaptureError(err, map[string]interface{}{"task": task.Name()})
		return
	}

	w.logger.Debug("task completed",
		"task", task.Name(),
		"duration", time.Since(start),
	)
}
