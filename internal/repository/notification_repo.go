package repository

import (
	"context"

	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
)

type ListNotificationsParams struct {
	UserID     string
	UnreadOnly bool
	Limit      int
}

// NotificationRepository persists user notifications. Every mutation is
// scoped by user id so one user's read/delete can never touch another's rows.
type NotificationRepository interface {
	Insert(ctx context.Context, n *entity.Notification) (string, error)
	ListByUser(ctx context.Context, params ListNotificationsParams) ([]entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, notificationID, userID string) error
}
