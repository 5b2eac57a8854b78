package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	natsadapter "github.com/omar-farha/ne3ma-service/internal/adapter/nats"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/repository"
)

// Notifier is the narrow dispatch surface the lifecycle services depend on.
// Dispatch failures past persistence never fail the caller's operation.
type Notifier interface {
	Notify(ctx context.Context, userID string, ntype status.NotificationType, title, message string, data map[string]string) (*entity.Notification, error)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, notificationID, userID string) error
}

type notificationService struct {
	repo        repository.NotificationRepository
	countCache  repository.UnreadCountCache
	publisher   natsadapter.MessagePublisher
	log         logger.Logger
	countTTL    time.Duration
	defaultList int
}

func NewNotificationService(
	repo repository.NotificationRepository,
	countCache repository.UnreadCountCache,
	publisher natsadapter.MessagePublisher,
	log logger.Logger,
	countTTL time.Duration,
) NotificationService {
	return &notificationService{
		repo:        repo,
		countCache:  countCache,
		publisher:   publisher,
		log:         log,
		countTTL:    countTTL,
		defaultList: 50,
	}
}

// Notify stores the notification and pushes it to the user's channel. The
// store is the source of truth; a failed push only degrades to pull delivery,
// so publish and cache errors are logged and swallowed.
func (s *notificationService) Notify(ctx context.Context, userID string, ntype status.NotificationType, title, message string, data map[string]string) (*entity.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: notification user ID cannot be empty", ErrValidation)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: notification title cannot be empty", ErrValidation)
	}
	if ntype == "" {
		ntype = status.NotificationStatusUpdate
	}

	n := &entity.Notification{
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		Data:      data,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.repo.Insert(ctx, n)
	if err != nil {
		s.log.Errorf("Failed to persist notification for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}
	n.ID = id

	if err := s.publisher.Publish(ctx, natsadapter.UserSubject(userID), n); err != nil {
		s.log.Warnf("Failed to publish notification %s for user %s: %v", id, userID, err)
	}
	if err := s.countCache.Invalidate(ctx, userID); err != nil {
		s.log.Warnf("Failed to invalidate unread count for user %s: %v", userID, err)
	}

	s.log.Infof("Notification %s (%s) dispatched to user %s", id, ntype, userID)
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}
	if limit <= 0 {
		limit = s.defaultList
	}
	items, err := s.repo.ListByUser(ctx, repository.ListNotificationsParams{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	return items, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}

	count, err := s.countCache.Get(ctx, userID)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warnf("Unread count cache read failed for user %s: %v", userID, err)
	}

	count, err = s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	if err := s.countCache.Set(ctx, userID, count, s.countTTL); err != nil {
		s.log.Warnf("Unread count cache write failed for user %s: %v", userID, err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if notificationID == "" || userID == "" {
		return fmt.Errorf("%w: notification ID and user ID cannot be empty", ErrValidation)
	}
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
		}
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	if err := s.countCache.Invalidate(ctx, userID); err != nil {
		s.log.Warnf("Failed to invalidate unread count for user %s: %v", userID, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}
	modified, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %s: %w", userID, err)
	}
	if err := s.countCache.Invalidate(ctx, userID); err != nil {
		s.log.Warnf("Failed to invalidate unread count for user %s: %v", userID, err)
	}
	s.log.Infof("Marked %d notifications read for user %s", modified, userID)
	return modified, nil
}

func (s *notificationService) Delete(ctx context.Context, notificationID, userID string) error {
	if notificationID == "" || userID == "" {
		return fmt.Errorf("%w: notification ID and user ID cannot be empty", ErrValidation)
	}
	if err := s.repo.Delete(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
		}
		return fmt.Errorf("failed to delete notification %s: %w", notificationID, err)
	}
	if err := s.countCache.Invalidate(ctx, userID); err != nil {
		s.log.Warnf("Failed to invalidate unread count for user %s: %v", userID, err)
	}
	return nil
}
