package email

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned when the outbound queue cannot take another message.
var ErrQueueFull = errors.New("email: queue full")

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("email: sender closed")

// AsyncSender queues messages and delivers them from one background
// goroutine so callers never wait on SMTP.
type AsyncSender struct {
	next    Sender
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan *Email
	done   chan struct{}
}

// NewAsyncSender starts delivering through next. size bounds the queue.
func NewAsyncSender(next Sender, size int, logger *slog.Logger) *AsyncSender {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AsyncSender{
		next:    next,
		logger:  logger,
		timeout: time.Minute,
		queue:   make(chan *Email, size),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

// Send enqueues email. It does not block.
func (s *AsyncSender) Send(ctx context.Context, email *Email) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.queue <- email:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for the queue to drain or ctx
// to end.
func (s *AsyncSender) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSender) loop() {
	defer close(s.done)
	for email := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.next.Send(ctx, email); err != nil {
			s.logger.Error("email delivery failed",
				"to", email.To,
				"subject", email.Subject,
				"error", err,
			)
		}
		cancel()
	}
}
