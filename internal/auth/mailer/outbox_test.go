package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// captureMailer records every message it is asked to send. The first
// failFirst Send calls fail before deliveries start succeeding.
type captureMailer struct {
	mu        sync.Mutex
	sent      []Message
	failFirst int
}

func (c *captureMailer) Send(_ context.Context, to []string, subject, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFirst > 0 {
		c.failFirst--
		return errors.New("smtp down")
	}
	c.sent = append(c.sent, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (c *captureMailer) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOutboxDeliversQueuedMail(t *testing.T) {
	t.Parallel()

	capture := &captureMailer{}
	outbox := NewOutbox(capture, discardLogger(), 8)
	outbox.Start()

	outbox.Enqueue(Message{To: []string{"a@x.com"}, Subject: "hello", Body: "<p>hi</p>"})
	outbox.Enqueue(Message{To: []string{"b@x.com"}, Subject: "again", Body: "<p>yo</p>"})

	require.Eventually(t, func() bool {
		return len(capture.messages()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	outbox.Stop()

	msgs := capture.messages()
	require.Equal(t, []string{"a@x.com"}, msgs[0].To)
	require.Equal(t, "hello", msgs[0].Subject)
}

func TestOutboxDrainsOnStop(t *testing.T) {
	t.Parallel()

	capture := &captureMailer{}
	outbox := NewOutbox(capture, discardLogger(), 8)

	// Queue before the worker starts so Stop has something to drain.
	outbox.Enqueue(Message{To: []string{"a@x.com"}, Subject: "one", Body: "x"})
	outbox.Enqueue(Message{To: []string{"b@x.com"}, Subject: "two", Body: "y"})

	outbox.Start()
	outbox.Stop()

	require.Len(t, capture.messages(), 2)
}

func TestOutboxDropsWhenFull(t *testing.T) {
	t.Parallel()

	capture := &captureMailer{}
	outbox := NewOutbox(capture, discardLogger(), 1)

	// Worker not started, so the second message overflows the queue.
	outbox.Enqueue(Message{To: []string{"a@x.com"}, Subject: "kept", Body: "x"})
	outbox.Enqueue(Message{To: []string{"b@x.com"}, Subject: "dropped", Body: "y"})

	outbox.Start()
	outbox.Stop()

	msgs := capture.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "kept", msgs[0].Subject)
}

func TestOutboxSurvivesSendFailures(t *testing.T) {
	t.Parallel()

	capture := &captureMailer{failFirst: 1}
	outbox := NewOutbox(capture, discardLogger(), 8)
	outbox.Start()

	// The worker drains in order, so the first message hits the failure and
	// is logged and dropped; the second one goes through.
	outbox.Enqueue(Message{To: []string{"a@x.com"}, Subject: "fails", Body: "x"})
	outbox.Enqueue(Message{To: []string{"b@x.com"}, Subject: "ok", Body: "y"})

	require.Eventually(t, func() bool {
		return len(capture.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	outbox.Stop()
	require.Equal(t, "ok", capture.messages()[0].Subject)
}
