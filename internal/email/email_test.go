package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []*Email
	err   error
	block chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, email *Email) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestNotifier_PasswordChanged(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "Shelf")
	at := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	err := n.PasswordChanged(context.Background(), "ada@example.com", at)

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Equal(t, "Your Shelf password was changed", msg.Subject)
	assert.Contains(t, msg.TextBody, "March 1, 2024 at 14:30 UTC")
	assert.Contains(t, msg.HTMLBody, "<p>The password for your Shelf account")
}

func TestNotifier_PasswordChanged_EscapesAppName(t *testing.T) {
	sender := &recordingSender{}

	require.NoError(t, NewNotifier(sender, "<b>Shelf</b>").PasswordChanged(context.Background(), "ada@example.com", time.Now()))

	assert.Contains(t, sender.sent[0].HTMLBody, "&lt;b&gt;Shelf&lt;/b&gt;")
}

func TestAsyncSender_DeliversAndDrains(t *testing.T) {
	next := &recordingSender{}
	s := NewAsyncSender(next, 4, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(context.Background(), &Email{To: []string{"ada@example.com"}}))
	}
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, 3, next.count())
	assert.ErrorIs(t, s.Send(context.Background(), &Email{}), ErrClosed)
}

func TestAsyncSender_QueueFull(t *testing.T) {
	next := &recordingSender{block: make(chan struct{})}
	s := NewAsyncSender(next, 1, nil)

	// The first message is picked up by the loop and blocks there; the
	// second fills the queue.
	require.NoError(t, s.Send(context.Background(), &Email{}))
	require.Eventually(t, func() bool { return len(s.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, s.Send(context.Background(), &Email{}))

	assert.ErrorIs(t, s.Send(context.Background(), &Email{}), ErrQueueFull)

	close(next.block)
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 2, next.count())
}

func TestAsyncSender_FailuresAreLogged(t *testing.T) {
	next := &recordingSender{err: errors.New("smtp: 550 mailbox unavailable")}
	s := NewAsyncSender(next, 1, nil)

	require.NoError(t, s.Send(context.Background(), &Email{To: []string{"nobody@example.com"}}))
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, 1, next.count())
}

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 1025, From: "no-reply@example.com", FromName: "Shelf"}, nil)

	msg, err := s.message(&Email{To: []string{"ada@example.com"}, Subject: "Hi", TextBody: "hello"})
	require.NoError(t, err)
	from := msg.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "Shelf")
	assert.Contains(t, from[0], "<no-reply@example.com>")

	_, err = s.message(&Email{To: []string{"not an address"}, Subject: "Hi"})
	assert.Error(t, err)
}
