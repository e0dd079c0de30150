package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pfm/internal/amqp"
	"pfm/internal/log"
	"pfm/internal/metrics"
	"pfm/internal/notify"
)

// ErrUnknownKind is returned for queue messages of a kind the worker does
// not deliver. Such messages are dropped after one redelivery.
var ErrUnknownKind = errors.New("unknown notification kind")

// Consumer is the part of *amqp.Client the worker reads from.
type Consumer interface {
	ConsumeNotifications(ctx context.Context, handler func(context.Context, *amqp.NotificationMessage) error) error
}

// NotificationWorker delivers notifications published by the API over
// the configured channels.
type NotificationWorker struct {
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger

	// Backoff bounds the wait between consumer restarts.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func NewNotificationWorker(notifier notify.Notifier, m *metrics.Metrics, logger *log.Logger) *NotificationWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &NotificationWorker{
		notifier:   notifier,
		metrics:    m,
		logger:     logger.WithComponent(log.ComponentWorker),
		MinBackoff: time.Second,
		MaxBackoff: 30 * time.Second,
	}
}

// HandleNotification delivers a single queued notification. A returned
// error makes the consumer requeue the message.
func (w *NotificationWorker) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	switch msg.Kind {
	case notify.KindMilestone, notify.KindBudget:
	default:
		w.logger.WarnContext(ctx, "Dropping notification of unknown kind",
			"message_id", msg.ID,
			log.FieldKind, msg.Kind)
		return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}

	to, m := notify.FromQueueMessage(msg)
	if !to.Reachable() {
		w.logger.DebugContext(ctx, "Recipient has no delivery channel",
			log.FieldUserID, to.UserID,
			log.FieldKind, m.Kind)
		return nil
	}

	err := w.notifier.Notify(ctx, to, m)
	w.metrics.Notification(m.Kind, err)
	if err != nil {
		return fmt.Errorf("deliver %s notification to user %d: %w", m.Kind, to.UserID, err)
	}

	w.logger.InfoContext(ctx, "Notification delivered",
		"message_id", msg.ID,
		log.FieldUserID, to.UserID,
		log.FieldKind, m.Kind)
	return nil
}

// Run consumes until ctx is cancelled, restarting the consumer with
// exponential backoff when the connection drops.
func (w *NotificationWorker) Run(ctx context.Context, c Consumer) error {
	backoff := w.MinBackoff
	for {
		err := c.ConsumeNotifications(ctx, w.HandleNotification)
		if ctx.Err() != nil {
			return nil
		}
		w.logger.ErrorContext(ctx, "Notification consumer stopped, restarting",
			log.FieldError, err,
			"backoff", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, w.MaxBackoff)
	}
}
