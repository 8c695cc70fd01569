package mailer

import (
	"context"
	"log/slog"
	"time"
)

// sendTimeout bounds a single delivery attempt so a hung SMTP connection
// cannot wedge the worker.
const sendTimeout = 30 * time.Second

// Message is a queued piece of outgoing mail.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Outbox queues outgoing mail and delivers it from a background worker.
// Delivery is best-effort: failures are logged and the message is dropped.
type Outbox struct {
	Mailer Mailer
	Logger *slog.Logger

	queue  chan Message
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewOutbox creates an outbox with the given queue capacity. If capacity is 0
// or negative, defaults to 64.
func NewOutbox(m Mailer, logger *slog.Logger, capacity int) *Outbox {
	if capacity <= 0 {
		capacity = 64
	}

	return &Outbox{
		Mailer: m,
		Logger: logger,
		queue:  make(chan Message, capacity),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background delivery worker. This is non-blocking.
// Call Stop() to gracefully shutdown the worker.
func (o *Outbox) Start() {
	go o.run()
	o.Logger.Info("mail outbox started", "capacity", cap(o.queue))
}

// Stop drains any queued messages and shuts the worker down. Blocks until
// the worker has finished.
func (o *Outbox) Stop() {
	close(o.stopCh)
	<-o.doneCh
	o.Logger.Info("mail outbox stopped")
}

// Enqueue queues a message for delivery. It never blocks: if the queue is
// full the message is dropped and the drop is logged.
func (o *Outbox) Enqueue(msg Message) {
	select {
	case o.queue <- msg:
	default:
		o.Logger.Error("mail outbox full, dropping message", "to", msg.To, "subject", msg.Subject)
	}
}

func (o *Outbox) run() {
	defer close(o.doneCh)

	for {
		select {
		case msg := <-o.queue:
			o.deliver(msg)
		case <-o.stopCh:
			// Drain whatever is left before exiting.
			for {
				select {
				case msg := <-o.queue:
					o.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (o *Outbox) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := o.Mailer.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		o.Logger.Error("failed to send mail", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	o.Logger.Debug("mail sent", "to", msg.To, "subject", msg.Subject)
}
