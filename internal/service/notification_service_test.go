package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const unreadCountTTL = time.Minute

func newNotificationServiceForTest() (*MockNotificationRepository, *MockUnreadCountCache, *MockPublisher, NotificationService) {
	mockRepo := new(MockNotificationRepository)
	mockCache := new(MockUnreadCountCache)
	mockPublisher := new(MockPublisher)
	svc := NewNotificationService(mockRepo, mockCache, mockPublisher, logger.NoOp(), unreadCountTTL)
	return mockRepo, mockCache, mockPublisher, svc
}

func TestNotificationService_Notify_Success(t *testing.T) {
	mockRepo, mockCache, mockPublisher, svc := newNotificationServiceForTest()

	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.UserID == "user1" && n.Type == status.NotificationNewDonor && !n.Read
	})).Return("notif1", nil).Once()
	mockPublisher.On("Publish", mock.Anything, "notifications.user.user1", mock.MatchedBy(func(msg interface{}) bool {
		n, ok := msg.(*entity.Notification)
		return ok && n.ID == "notif1" && n.UserID == "user1"
	})).Return(nil).Once()
	mockCache.On("Invalidate", mock.Anything, "user1").Return(nil).Once()

	n, err := svc.Notify(context.Background(), "user1", status.NotificationNewDonor,
		"New Donor", "Someone claimed your listing", map[string]string{"listing_id": "listing1"})

	assert.NoError(t, err)
	assert.Equal(t, "notif1", n.ID)
	assert.False(t, n.Read)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestNotificationService_Notify_PublishFailureDoesNotFail(t *testing.T) {
	mockRepo, mockCache, mockPublisher, svc := newNotificationServiceForTest()

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return("notif1", nil).Once()
	mockPublisher.On("Publish", mock.Anything, "notifications.user.user1", mock.Anything).
		Return(errors.New("nats unavailable")).Once()
	mockCache.On("Invalidate", mock.Anything, "user1").Return(nil).Once()

	n, err := svc.Notify(context.Background(), "user1", status.NotificationStatusUpdate, "Order Update", "Order confirmed", nil)

	assert.NoError(t, err)
	assert.Equal(t, "notif1", n.ID)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestNotificationService_Notify_Fail_InsertError(t *testing.T) {
	mockRepo, _, mockPublisher, svc := newNotificationServiceForTest()

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return("", errors.New("mongo down")).Once()

	n, err := svc.Notify(context.Background(), "user1", status.NotificationStatusUpdate, "Order Update", "", nil)

	assert.Nil(t, n)
	assert.Error(t, err)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_Notify_DefaultsType(t *testing.T) {
	mockRepo, mockCache, mockPublisher, svc := newNotificationServiceForTest()

	mockRepo.On("Insert", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.Type == status.NotificationStatusUpdate
	})).Return("notif1", nil).Once()
	mockPublisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	mockCache.On("Invalidate", mock.Anything, "user1").Return(nil).Once()

	n, err := svc.Notify(context.Background(), "user1", "", "Hello", "", nil)

	assert.NoError(t, err)
	assert.Equal(t, status.NotificationStatusUpdate, n.Type)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_UnreadCount_CacheHit(t *testing.T) {
	mockRepo, mockCache, _, svc := newNotificationServiceForTest()

	mockCache.On("Get", mock.Anything, "user1").Return(int64(4), nil).Once()

	count, err := svc.UnreadCount(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
	mockRepo.AssertNotCalled(t, "CountUnread", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestNotificationService_UnreadCount_CacheMiss(t *testing.T) {
	mockRepo, mockCache, _, svc := newNotificationServiceForTest()

	mockCache.On("Get", mock.Anything, "user1").Return(int64(0), repository.ErrCacheMiss).Once()
	mockRepo.On("CountUnread", mock.Anything, "user1").Return(int64(7), nil).Once()
	mockCache.On("Set", mock.Anything, "user1", int64(7), unreadCountTTL).Return(nil).Once()

	count, err := svc.UnreadCount(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestNotificationService_MarkRead_Fail_NotFound(t *testing.T) {
	mockRepo, mockCache, _, svc := newNotificationServiceForTest()

	mockRepo.On("MarkRead", mock.Anything, "notif1", "user1").Return(repository.ErrNotFound).Once()

	err := svc.MarkRead(context.Background(), "notif1", "user1")

	assert.ErrorIs(t, err, ErrNotFound)
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkAllRead_ScopedToUser(t *testing.T) {
	mockRepo, mockCache, _, svc := newNotificationServiceForTest()

	mockRepo.On("MarkAllRead", mock.Anything, "user1").Return(int64(3), nil).Once()
	mockCache.On("Invalidate", mock.Anything, "user1").Return(nil).Once()

	modified, err := svc.MarkAllRead(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), modified)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestNotificationService_List_DefaultsLimit(t *testing.T) {
	mockRepo, _, _, svc := newNotificationServiceForTest()

	mockRepo.On("ListByUser", mock.Anything, repository.ListNotificationsParams{
		UserID:     "user1",
		UnreadOnly: true,
		Limit:      50,
	}).Return([]entity.Notification{{ID: "notif1", UserID: "user1"}}, nil).Once()

	items, err := svc.List(context.Background(), "user1", true, 0)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_Delete_InvalidatesCount(t *testing.T) {
	mockRepo, mockCache, _, svc := newNotificationServiceForTest()

	mockRepo.On("Delete", mock.Anything, "notif1", "user1").Return(nil).Once()
	mockCache.On("Invalidate", mock.Anything, "user1").Return(nil).Once()

	err := svc.Delete(context.Background(), "notif1", "user1")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}
