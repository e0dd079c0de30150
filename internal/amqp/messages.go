package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationMessage carries a rendered notification to the delivery
// worker. The worker does not touch the database.
type NotificationMessage struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewNotificationMessage creates a message with a fresh id.
func NewNotificationMessage(kind string, userID int64) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
