package entity

import (
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/status"
)

// Notification is a user-facing event record. Data is an opaque payload such
// as {"listing_id": …} or {"order_id": …}; only the read flag is ever mutated
// after creation.
type Notification struct {
	ID        string                  `bson:"_id,omitempty" json:"id"`
	UserID    string                  `bson:"user_id" json:"user_id"`
	Type      status.NotificationType `bson:"type" json:"type"`
	Title     string                  `bson:"title" json:"title"`
	Message   string                  `bson:"message" json:"message"`
	Data      map[string]string       `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool                    `bson:"read" json:"read"`
	CreatedAt time.Time               `bson:"created_at" json:"created_at"`
}
