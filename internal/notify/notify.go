// Package notify delivers user notifications over email, Telegram or a
// message queue. Delivery is always best-effort from the caller's point of
// view: see Send. The API wraps its channels in a Dispatcher so requests
// never wait on delivery.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pfm/internal/core"
	"pfm/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	KindMilestone = "milestone"
	KindBudget    = "budget"
)

// Recipient identifies who receives a notification.
type Recipient struct {
	UserID         int64
	Username       string
	Email          string
	TelegramChatID int64
}

// RecipientFor builds a recipient from a user record. The email address is
// left empty unless the user opted in to email notifications.
func RecipientFor(u core.User) Recipient {
	r := Recipient{
		UserID:         u.ID,
		Username:       u.Username,
		TelegramChatID: u.TelegramChatID,
	}
	if u.EmailNotification {
		r.Email = u.Email
	}
	return r
}

// Reachable reports whether any channel can deliver to r.
func (r Recipient) Reachable() bool {
	return r.Email != "" || r.TelegramChatID != 0
}

// Message is a rendered notification.
type Message struct {
	Kind    string
	Subject string
	Body    string
}

// Notifier delivers one message to one recipient.
type Notifier interface {
	Notify(ctx context.Context, to Recipient, msg Message) error
}

// Noop discards every message. It stands in for unconfigured channels.
type Noop struct{}

func (Noop) Notify(context.Context, Recipient, Message) error { return nil }

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, to Recipient, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, to, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Throttled limits how fast the wrapped notifier is called.
type Throttled struct {
	next    Notifier
	limiter *rate.Limiter
}

// NewThrottled allows perMinute sends per minute with a burst of one.
// A non-positive perMinute disables throttling.
func NewThrottled(next Notifier, perMinute int) Notifier {
	if perMinute <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1),
	}
}

func (t *Throttled) Notify(ctx context.Context, to Recipient, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return t.next.Notify(ctx, to, msg)
}

// Send delivers msg and swallows any failure after logging and counting it.
// Callers use it for side effects that must never fail the request.
func Send(ctx context.Context, n Notifier, m *metrics.Metrics, to Recipient, msg Message) {
	SendThen(ctx, n, m, to, msg, nil)
}

// SendThen is Send with a callback receiving the delivery outcome. With a
// Deferred notifier the callback runs after SendThen has returned.
func SendThen(ctx context.Context, n Notifier, m *metrics.Metrics, to Recipient, msg Message, then func(error)) {
	if n == nil {
		if then != nil {
			then(nil)
		}
		return
	}
	report := func(err error) {
		m.Notification(msg.Kind, err)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to deliver notification",
				"user_id", to.UserID,
				"kind", msg.Kind,
				"error", err)
		} else {
			slog.InfoContext(ctx, "Notification delivered", "user_id", to.UserID, "kind", msg.Kind)
		}
		if then != nil {
			then(err)
		}
	}

	if d, ok := n.(Deferred); ok {
		if err := d.NotifyThen(ctx, to, msg, report); err != nil {
			report(err)
		}
		return
	}
	report(n.Notify(ctx, to, msg))
}
