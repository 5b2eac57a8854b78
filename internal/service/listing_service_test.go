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

const listingCacheTTL = 5 * time.Minute

func newListingServiceForTest() (*MockListingRepository, *MockDonationRepository, *MockListingCache, *MockPhotoStorage, *MockNotifier, ListingService) {
	mockRepo := new(MockListingRepository)
	mockDonations := new(MockDonationRepository)
	mockCache := new(MockListingCache)
	mockPhotos := new(MockPhotoStorage)
	mockNotifier := new(MockNotifier)
	svc := NewListingService(mockRepo, mockDonations, mockCache, mockPhotos, mockNotifier, logger.NoOp(), listingCacheTTL)
	return mockRepo, mockDonations, mockCache, mockPhotos, mockNotifier, svc
}

func availableListing(id, ownerID string) *entity.Listing {
	now := time.Now().UTC()
	return &entity.Listing{
		ID:           id,
		OwnerID:      ownerID,
		Title:        "Cooked meals for 10 people",
		ListingType:  status.ListingTypeDonation,
		Category:     status.CategoryFood,
		UrgencyLevel: status.UrgencyHigh,
		Status:       status.ListingAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestListingService_Create_Success(t *testing.T) {
	mockRepo, _, _, _, _, svc := newListingServiceForTest()

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Listing) bool {
		return l.OwnerID == "owner1" && l.Status == status.ListingAvailable && l.UrgencyLevel == status.UrgencyModerate
	})).Return("listing1", nil).Once()
	mockRepo.On("AppendHistory", mock.Anything, mock.MatchedBy(func(row *entity.ListingStatusHistory) bool {
		return row.ListingID == "listing1" && row.Status == status.ListingAvailable && row.ChangedBy == "owner1"
	})).Return("hist1", nil).Once()

	listing, err := svc.Create(context.Background(), CreateListingParams{
		OwnerID:  "owner1",
		Title:    "Winter clothes",
		Category: status.CategoryClothing,
	})

	assert.NoError(t, err)
	assert.NotNil(t, listing)
	assert.Equal(t, "listing1", listing.ID)
	assert.Equal(t, status.ListingAvailable, listing.Status)
	assert.Equal(t, status.ListingTypeDonation, listing.ListingType)
	mockRepo.AssertExpectations(t)
}

func TestListingService_Create_Fail_UnknownCategory(t *testing.T) {
	mockRepo, _, _, _, _, svc := newListingServiceForTest()

	listing, err := svc.Create(context.Background(), CreateListingParams{
		OwnerID:  "owner1",
		Title:    "Mystery box",
		Category: "weapons",
	})

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrValidation)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingService_GetByID_CacheHit(t *testing.T) {
	mockRepo, _, mockCache, _, _, svc := newListingServiceForTest()

	cached := availableListing("listing1", "owner1")
	mockCache.On("Get", mock.Anything, "listing1").Return(cached, nil).Once()

	listing, err := svc.GetByID(context.Background(), "listing1")

	assert.NoError(t, err)
	assert.Equal(t, cached, listing)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestListingService_GetByID_CacheMissFillsCache(t *testing.T) {
	mockRepo, _, mockCache, _, _, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	mockCache.On("Get", mock.Anything, "listing1").Return(nil, repository.ErrCacheMiss).Once()
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()
	mockCache.On("Set", mock.Anything, stored, listingCacheTTL).Return(nil).Once()

	listing, err := svc.GetByID(context.Background(), "listing1")

	assert.NoError(t, err)
	assert.Equal(t, stored, listing)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestListingService_Claim_Success(t *testing.T) {
	mockRepo, mockDonations, mockCache, _, mockNotifier, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()
	mockRepo.On("ClaimIfAvailable", mock.Anything, "listing1", "donor1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockDonations.On("Create", mock.Anything, mock.MatchedBy(func(tx *entity.DonationTransaction) bool {
		return tx.ListingID == "listing1" && tx.DonorID == "donor1" &&
			tx.RecipientID == "owner1" && tx.Status == entity.TransactionConfirmed
	})).Return("tx1", nil).Once()
	mockRepo.On("AppendHistory", mock.Anything, mock.MatchedBy(func(row *entity.ListingStatusHistory) bool {
		return row.ListingID == "listing1" && row.Status == status.ListingClaimed && row.ChangedBy == "donor1"
	})).Return("hist1", nil).Once()
	mockCache.On("Delete", mock.Anything, "listing1").Return(nil).Once()
	mockNotifier.On("Notify", mock.Anything, "owner1", status.NotificationNewDonor, mock.Anything, mock.Anything, mock.Anything).
		Return(&entity.Notification{ID: "n1"}, nil).Once()

	listing, err := svc.Claim(context.Background(), "listing1", "donor1", "I can deliver tomorrow")

	assert.NoError(t, err)
	assert.Equal(t, status.ListingClaimed, listing.Status)
	assert.Equal(t, "donor1", listing.DonorID)
	assert.NotNil(t, listing.ClaimedAt)
	mockRepo.AssertExpectations(t)
	mockDonations.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestListingService_Claim_Fail_AlreadyClaimed(t *testing.T) {
	mockRepo, mockDonations, _, _, mockNotifier, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()
	mockRepo.On("ClaimIfAvailable", mock.Anything, "listing1", "donor2", mock.AnythingOfType("time.Time")).
		Return(repository.ErrStatusConflict).Once()

	listing, err := svc.Claim(context.Background(), "listing1", "donor2", "")

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	mockDonations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestListingService_Claim_Fail_SelfClaim(t *testing.T) {
	mockRepo, mockDonations, _, _, _, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()

	listing, err := svc.Claim(context.Background(), "listing1", "owner1", "")

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrUnauthorized)
	mockRepo.AssertNotCalled(t, "ClaimIfAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDonations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingService_Claim_Fail_TransactionNotRecorded(t *testing.T) {
	mockRepo, mockDonations, _, _, _, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()
	mockRepo.On("ClaimIfAvailable", mock.Anything, "listing1", "donor1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockDonations.On("Create", mock.Anything, mock.Anything).Return("", errors.New("mongo down")).Once()

	listing, err := svc.Claim(context.Background(), "listing1", "donor1", "")

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrPartialCreate)
	mockRepo.AssertExpectations(t)
	mockDonations.AssertExpectations(t)
}

func TestListingService_UpdateStatus_Fail_IllegalTransition(t *testing.T) {
	mockRepo, _, _, _, _, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	stored.Status = status.ListingCompleted
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()

	listing, err := svc.UpdateStatus(context.Background(), "listing1", status.ListingAvailable, "owner1", "")

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestListingService_UpdateStatus_Fail_NotOwner(t *testing.T) {
	mockRepo, _, _, _, _, svc := newListingServiceForTest()

	stored := availableListing("listing1", "owner1")
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()

	listing, err := svc.UpdateStatus(context.Background(), "listing1", status.ListingCancelled, "stranger", "")

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrUnauthorized)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestListingService_UpdateStatus_ReleaseClearsDonor(t *testing.T) {
	mockRepo, _, mockCache, _, mockNotifier, svc := newListingServiceForTest()

	claimedAt := time.Now().UTC().Add(-time.Hour)
	stored := availableListing("listing1", "owner1")
	stored.Status = status.ListingClaimed
	stored.DonorID = "donor1"
	stored.ClaimedAt = &claimedAt

	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()
	mockRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(p repository.UpdateListingStatusParams) bool {
		return p.ListingID == "listing1" && p.Status == status.ListingAvailable && p.ClearClaim
	})).Return(nil).Once()
	mockRepo.On("AppendHistory", mock.Anything, mock.Anything).Return("hist1", nil).Once()
	mockCache.On("Delete", mock.Anything, "listing1").Return(nil).Once()
	mockNotifier.On("Notify", mock.Anything, "owner1", status.NotificationStatusUpdate, mock.Anything, mock.Anything, mock.Anything).
		Return(&entity.Notification{ID: "n1"}, nil).Once()

	listing, err := svc.UpdateStatus(context.Background(), "listing1", status.ListingAvailable, "donor1", "cannot make it")

	assert.NoError(t, err)
	assert.Equal(t, status.ListingAvailable, listing.Status)
	assert.Empty(t, listing.DonorID)
	assert.Nil(t, listing.ClaimedAt)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestListingService_Complete_Success(t *testing.T) {
	mockRepo, mockDonations, mockCache, _, mockNotifier, svc := newListingServiceForTest()

	claimedAt := time.Now().UTC().Add(-2 * time.Hour)
	stored := availableListing("listing1", "owner1")
	stored.Status = status.ListingInProgress
	stored.DonorID = "donor1"
	stored.ClaimedAt = &claimedAt

	photos := []string{"http://storage/delivery-photos/a.jpg"}
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()
	mockRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(p repository.UpdateListingStatusParams) bool {
		return p.ListingID == "listing1" && p.Status == status.ListingCompleted &&
			p.CompletedAt != nil && p.DeliveryNotes == "left at the door" && len(p.DeliveryPhotos) == 1
	})).Return(nil).Once()
	mockDonations.On("CompleteByListingID", mock.Anything, "listing1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	mockRepo.On("AppendHistory", mock.Anything, mock.Anything).Return("hist1", nil).Once()
	mockCache.On("Delete", mock.Anything, "listing1").Return(nil).Once()
	mockNotifier.On("Notify", mock.Anything, "owner1", status.NotificationDeliveryCompleted, mock.Anything, mock.Anything, mock.Anything).
		Return(&entity.Notification{ID: "n1"}, nil).Once()

	listing, err := svc.Complete(context.Background(), "listing1", "donor1", "left at the door", photos)

	assert.NoError(t, err)
	assert.Equal(t, status.ListingCompleted, listing.Status)
	assert.NotNil(t, listing.CompletedAt)
	assert.Equal(t, photos, listing.DeliveryPhotos)
	mockRepo.AssertExpectations(t)
	mockDonations.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestListingService_Complete_Fail_NotInProgress(t *testing.T) {
	mockRepo, mockDonations, _, _, _, svc := newListingServiceForTest()

	claimedAt := time.Now().UTC()
	stored := availableListing("listing1", "owner1")
	stored.Status = status.ListingClaimed
	stored.DonorID = "donor1"
	stored.ClaimedAt = &claimedAt
	mockRepo.On("GetByID", mock.Anything, "listing1").Return(stored, nil).Once()

	listing, err := svc.Complete(context.Background(), "listing1", "donor1", "", nil)

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	mockDonations.AssertNotCalled(t, "CompleteByListingID", mock.Anything, mock.Anything, mock.Anything)
}

func TestListingService_UpdateStatus_Fail_NotFound(t *testing.T) {
	mockRepo, _, _, _, _, svc := newListingServiceForTest()

	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

	listing, err := svc.UpdateStatus(context.Background(), "missing", status.ListingCancelled, "owner1", "")

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingService_UploadDeliveryPhoto(t *testing.T) {
	_, _, _, mockPhotos, _, svc := newListingServiceForTest()

	data := []byte("jpeg bytes")
	mockPhotos.On("Upload", mock.Anything, "proof.jpg", data).
		Return("http://storage/delivery-photos/abc.jpg", nil).Once()

	url, err := svc.UploadDeliveryPhoto(context.Background(), "proof.jpg", data)

	assert.NoError(t, err)
	assert.Equal(t, "http://storage/delivery-photos/abc.jpg", url)
	mockPhotos.AssertExpectations(t)
}

func TestListingService_DonationStats(t *testing.T) {
	mockRepo, mockDonations, _, _, _, svc := newListingServiceForTest()

	mockRepo.On("StatusCountsByOwner", mock.Anything, "user1").Return(map[status.ListingStatus]int64{
		status.ListingAvailable: 2,
		status.ListingClaimed:   1,
		status.ListingCompleted: 3,
		status.ListingCancelled: 1,
	}, nil).Once()
	mockDonations.On("FindByUser", mock.Anything, "user1", repository.DonationRoleAny).Return([]entity.DonationTransaction{
		{DonorID: "user1", RecipientID: "other", Status: entity.TransactionCompleted},
		{DonorID: "user1", RecipientID: "other", Status: entity.TransactionConfirmed},
		{DonorID: "other", RecipientID: "user1", Status: entity.TransactionCompleted},
	}, nil).Once()

	stats, err := svc.DonationStats(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Equal(t, int64(7), stats.Listings.Total)
	assert.Equal(t, int64(2), stats.Listings.Available)
	assert.Equal(t, int64(1), stats.Listings.Claimed)
	assert.Equal(t, int64(3), stats.Listings.Completed)
	assert.Equal(t, int64(2), stats.DonationsGiven)
	assert.Equal(t, int64(1), stats.GivenCompleted)
	assert.Equal(t, int64(1), stats.DonationsReceived)
	assert.Equal(t, int64(1), stats.ReceivedCompleted)
	mockRepo.AssertExpectations(t)
	mockDonations.AssertExpectations(t)
}
