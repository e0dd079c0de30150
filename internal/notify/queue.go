package notify

import (
	"context"

	"pfm/internal/amqp"
)

// Publisher is the part of *amqp.Client the queue notifier needs.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// Queue hands messages to the notifier worker over AMQP instead of
// delivering them in-process.
type Queue struct {
	pub Publisher
}

func NewQueue(pub Publisher) *Queue {
	return &Queue{pub: pub}
}

func (q *Queue) Notify(ctx context.Context, to Recipient, msg Message) error {
	m := amqp.NewNotificationMessage(msg.Kind, to.UserID)
	m.Username = to.Username
	m.Email = to.Email
	m.TelegramChatID = to.TelegramChatID
	m.Subject = msg.Subject
	m.Body = msg.Body
	return q.pub.PublishNotification(ctx, m)
}

// FromQueueMessage rebuilds the recipient and message on the worker side.
func FromQueueMessage(m *amqp.NotificationMessage) (Recipient, Message) {
	return Recipient{
			UserID:         m.UserID,
			Username:       m.Username,
			Email:          m.Email,
			TelegramChatID: m.TelegramChatID,
		}, Message{
			Kind:    m.Kind,
			Subject: m.Subject,
			Body:    m.Body,
		}
}
