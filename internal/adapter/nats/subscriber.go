package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
)

// UserSubject returns the per-user notification subject. The dispatcher
// publishes every stored notification here; clients subscribe to receive
// pushes for their own user id only.
func UserSubject(userID string) string {
	return "notifications.user." + userID
}

type NotificationHandler func(n *entity.Notification)

// Subscriber delivers newly published notifications to in-process consumers.
// Delivery is at-most-once with no replay across reconnects.
type Subscriber struct {
	conn *nats.Conn
	log  logger.Logger
}

func NewSubscriber(conn *nats.Conn, log logger.Logger) (*Subscriber, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return &Subscriber{conn: conn, log: log}, nil
}

func (s *Subscriber) Subscribe(userID string, handler NotificationHandler) (*nats.Subscription, error) {
	subject := UserSubject(userID)
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		var n entity.Notification
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			s.log.Warnf("Dropping malformed notification on subject %s: %v", subject, err)
			return
		}
		handler(&n)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

func (s *Subscriber) Unsubscribe(sub *nats.Subscription) error {
	if sub == nil {
		return nil
	}
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", sub.Subject, err)
	}
	return nil
}
