package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/adapter/storage/s3"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/repository"
)

type CreateListingParams struct {
	OwnerID     string
	Title       string
	Description string
	ListingType status.ListingType
	Category    status.Category
	Urgency     status.UrgencyLevel
	Address     string
	Amount      string
	Price       float64
}

// ListingStatusCounts breaks a user's listings down by lifecycle state.
type ListingStatusCounts struct {
	Total     int64
	Available int64
	Claimed   int64
	Completed int64
}

// DonationStats aggregates a user's activity on both sides of the exchange.
type DonationStats struct {
	Listings          ListingStatusCounts
	DonationsGiven    int64
	DonationsReceived int64
	GivenCompleted    int64
	ReceivedCompleted int64
}

type ListingService interface {
	Create(ctx context.Context, params CreateListingParams) (*entity.Listing, error)
	GetByID(ctx context.Context, listingID string) (*entity.Listing, error)
	UpdateStatus(ctx context.Context, listingID string, newStatus status.ListingStatus, actorID, notes string) (*entity.Listing, error)
	Claim(ctx context.Context, listingID, donorID, notes string) (*entity.Listing, error)
	Complete(ctx context.Context, listingID, actorID, deliveryNotes string, deliveryPhotos []string) (*entity.Listing, error)
	StatusHistory(ctx context.Context, listingID string) ([]entity.ListingStatusHistory, error)
	UploadDeliveryPhoto(ctx context.Context, fileName string, data []byte) (string, error)
	UserDonations(ctx context.Context, userID string, role repository.DonationRole) ([]entity.DonationTransaction, error)
	DonationStats(ctx context.Context, userID string) (*DonationStats, error)
}

type listingService struct {
	listings  repository.ListingRepository
	donations repository.DonationRepository
	cache     repository.ListingCache
	photos    s3.PhotoStorage
	notifier  Notifier
	log       logger.Logger
	cacheTTL  time.Duration
}

func NewListingService(
	listings repository.ListingRepository,
	donations repository.DonationRepository,
	cache repository.ListingCache,
	photos s3.PhotoStorage,
	notifier Notifier,
	log logger.Logger,
	cacheTTL time.Duration,
) ListingService {
	return &listingService{
		listings:  listings,
		donations: donations,
		cache:     cache,
		photos:    photos,
		notifier:  notifier,
		log:       log,
		cacheTTL:  cacheTTL,
	}
}

func (s *listingService) Create(ctx context.Context, params CreateListingParams) (*entity.Listing, error) {
	listing, err := entity.NewListing(params.OwnerID, params.Title, params.ListingType, params.Category, params.Urgency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	listing.Description = params.Description
	listing.Address = params.Address
	listing.Amount = params.Amount
	listing.Price = params.Price

	id, err := s.listings.Create(ctx, listing)
	if err != nil {
		s.log.Errorf("Failed to create listing for owner %s: %v", params.OwnerID, err)
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	listing.ID = id

	if _, err := s.listings.AppendHistory(ctx, &entity.ListingStatusHistory{
		ListingID: id,
		Status:    status.ListingAvailable,
		ChangedBy: params.OwnerID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warnf("Failed to record initial history for listing %s: %v", id, err)
	}

	s.log.Infof("Listing %s created by owner %s (category=%s urgency=%s)", id, params.OwnerID, listing.Category, listing.UrgencyLevel)
	return listing, nil
}

func (s *listingService) GetByID(ctx context.Context, listingID string) (*entity.Listing, error) {
	if listingID == "" {
		return nil, fmt.Errorf("%w: listing ID cannot be empty", ErrValidation)
	}

	cached, err := s.cache.Get(ctx, listingID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warnf("Listing cache read failed for %s: %v", listingID, err)
	}

	listing, err := s.getFresh(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, listing, s.cacheTTL); err != nil {
		s.log.Warnf("Listing cache write failed for %s: %v", listingID, err)
	}
	return listing, nil
}

// getFresh always hits the repository; lifecycle writes use it so their
// precondition checks never run against a cached snapshot.
func (s *listingService) getFresh(ctx context.Context, listingID string) (*entity.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing %s", ErrNotFound, listingID)
		}
		return nil, fmt.Errorf("failed to load listing %s: %w", listingID, err)
	}
	return listing, nil
}

func (s *listingService) UpdateStatus(ctx context.Context, listingID string, newStatus status.ListingStatus, actorID, notes string) (*entity.Listing, error) {
	if listingID == "" || actorID == "" {
		return nil, fmt.Errorf("%w: listing ID and actor ID cannot be empty", ErrValidation)
	}
	if !status.ValidListingStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown listing status %q", ErrValidation, newStatus)
	}

	// Claiming and completing carry extra writes (donor linkage, donation
	// transaction); route through the dedicated operations so those always
	// happen together with the transition.
	if newStatus == status.ListingClaimed {
		return s.Claim(ctx, listingID, actorID, notes)
	}
	if newStatus == status.ListingCompleted {
		return s.Complete(ctx, listingID, actorID, notes, nil)
	}

	listing, err := s.getFresh(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !status.ListingTransitionLegal(listing.Status, newStatus) {
		return nil, fmt.Errorf("%w: listing %s cannot go from %s to %s", ErrInvalidTransition, listingID, listing.Status, newStatus)
	}
	if !status.CanActorUpdateListing(actorID, listing.OwnerID, listing.DonorID, listing.Status, newStatus) {
		return nil, fmt.Errorf("%w: user %s may not move listing %s from %s to %s", ErrUnauthorized, actorID, listingID, listing.Status, newStatus)
	}

	params := repository.UpdateListingStatusParams{
		ListingID: listingID,
		Status:    newStatus,
	}
	// Releasing a claimed listing back to available clears the donor linkage.
	if newStatus == status.ListingAvailable && listing.DonorID != "" {
		params.ClearClaim = true
	}
	if err := s.listings.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing %s", ErrNotFound, listingID)
		}
		return nil, fmt.Errorf("failed to update listing %s status: %w", listingID, err)
	}

	s.recordHistory(ctx, listingID, newStatus, actorID, notes)
	s.invalidate(ctx, listingID)
	s.notifyListingCounterparty(ctx, listing, actorID, newStatus)

	listing.Status = newStatus
	if params.ClearClaim {
		listing.DonorID = ""
		listing.ClaimedAt = nil
	}
	listing.UpdatedAt = time.Now().UTC()
	s.log.Infof("Listing %s moved to %s by user %s", listingID, newStatus, actorID)
	return listing, nil
}

// Claim races are resolved by a conditional write: whichever donor's update
// matches the still-available listing wins, everyone else gets
// ErrAlreadyClaimed without mutating anything.
func (s *listingService) Claim(ctx context.Context, listingID, donorID, notes string) (*entity.Listing, error) {
	if listingID == "" || donorID == "" {
		return nil, fmt.Errorf("%w: listing ID and donor ID cannot be empty", ErrValidation)
	}

	listing, err := s.getFresh(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == donorID {
		return nil, fmt.Errorf("%w: user %s cannot claim their own listing %s", ErrUnauthorized, donorID, listingID)
	}

	claimedAt := time.Now().UTC()
	if err := s.listings.ClaimIfAvailable(ctx, listingID, donorID, claimedAt); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, fmt.Errorf("%w: listing %s", ErrAlreadyClaimed, listingID)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: listing %s", ErrNotFound, listingID)
		default:
			return nil, fmt.Errorf("failed to claim listing %s: %w", listingID, err)
		}
	}

	tx := &entity.DonationTransaction{
		ListingID:   listingID,
		DonorID:     donorID,
		RecipientID: listing.OwnerID,
		Status:      entity.TransactionConfirmed,
		Notes:       notes,
		CreatedAt:   claimedAt,
		UpdatedAt:   claimedAt,
	}
	if _, err := s.donations.Create(ctx, tx); err != nil {
		s.log.Errorf("Listing %s claimed by %s but transaction creation failed: %v", listingID, donorID, err)
		return nil, fmt.Errorf("%w: listing %s is claimed but its donation transaction was not recorded: %v", ErrPartialCreate, listingID, err)
	}

	s.recordHistory(ctx, listingID, status.ListingClaimed, donorID, notes)
	s.invalidate(ctx, listingID)

	if _, err := s.notifier.Notify(ctx, listing.OwnerID, status.NotificationNewDonor,
		"New Donor", fmt.Sprintf("Someone claimed your listing %q", listing.Title),
		map[string]string{"listing_id": listingID}); err != nil {
		s.log.Warnf("Failed to notify owner %s about claim on listing %s: %v", listing.OwnerID, listingID, err)
	}

	listing.Status = status.ListingClaimed
	listing.DonorID = donorID
	listing.ClaimedAt = &claimedAt
	listing.UpdatedAt = claimedAt
	s.log.Infof("Listing %s claimed by donor %s", listingID, donorID)
	return listing, nil
}

func (s *listingService) Complete(ctx context.Context, listingID, actorID, deliveryNotes string, deliveryPhotos []string) (*entity.Listing, error) {
	if listingID == "" || actorID == "" {
		return nil, fmt.Errorf("%w: listing ID and actor ID cannot be empty", ErrValidation)
	}

	listing, err := s.getFresh(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !status.ListingTransitionLegal(listing.Status, status.ListingCompleted) {
		return nil, fmt.Errorf("%w: listing %s cannot go from %s to %s", ErrInvalidTransition, listingID, listing.Status, status.ListingCompleted)
	}
	if !status.CanActorUpdateListing(actorID, listing.OwnerID, listing.DonorID, listing.Status, status.ListingCompleted) {
		return nil, fmt.Errorf("%w: user %s may not complete listing %s", ErrUnauthorized, actorID, listingID)
	}

	completedAt := time.Now().UTC()
	if err := s.listings.UpdateStatus(ctx, repository.UpdateListingStatusParams{
		ListingID:      listingID,
		Status:         status.ListingCompleted,
		CompletedAt:    &completedAt,
		DeliveryNotes:  deliveryNotes,
		DeliveryPhotos: deliveryPhotos,
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: listing %s", ErrNotFound, listingID)
		}
		return nil, fmt.Errorf("failed to complete listing %s: %w", listingID, err)
	}

	if err := s.donations.CompleteByListingID(ctx, listingID, completedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("No donation transaction found to complete for listing %s", listingID)
		} else {
			s.log.Errorf("Listing %s completed but its transaction update failed: %v", listingID, err)
			return nil, fmt.Errorf("listing %s completed but its donation transaction was not updated: %w", listingID, err)
		}
	}

	s.recordHistory(ctx, listingID, status.ListingCompleted, actorID, deliveryNotes)
	s.invalidate(ctx, listingID)

	recipient := listing.OwnerID
	if actorID == listing.OwnerID && listing.DonorID != "" {
		recipient = listing.DonorID
	}
	if _, err := s.notifier.Notify(ctx, recipient, status.NotificationDeliveryCompleted,
		"Donation Completed", fmt.Sprintf("The donation for %q has been completed", listing.Title),
		map[string]string{"listing_id": listingID}); err != nil {
		s.log.Warnf("Failed to notify user %s about completion of listing %s: %v", recipient, listingID, err)
	}

	listing.Status = status.ListingCompleted
	listing.CompletedAt = &completedAt
	listing.DeliveryNotes = deliveryNotes
	listing.DeliveryPhotos = deliveryPhotos
	listing.UpdatedAt = completedAt
	s.log.Infof("Listing %s completed by user %s", listingID, actorID)
	return listing, nil
}

func (s *listingService) StatusHistory(ctx context.Context, listingID string) ([]entity.ListingStatusHistory, error) {
	if listingID == "" {
		return nil, fmt.Errorf("%w: listing ID cannot be empty", ErrValidation)
	}
	rows, err := s.listings.HistoryByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for listing %s: %w", listingID, err)
	}
	return rows, nil
}

func (s *listingService) UploadDeliveryPhoto(ctx context.Context, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: photo data cannot be empty", ErrValidation)
	}
	url, err := s.photos.Upload(ctx, fileName, data)
	if err != nil {
		return "", fmt.Errorf("failed to upload delivery photo: %w", err)
	}
	return url, nil
}

func (s *listingService) UserDonations(ctx context.Context, userID string, role repository.DonationRole) ([]entity.DonationTransaction, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}
	switch role {
	case repository.DonationRoleDonor, repository.DonationRoleRecipient, repository.DonationRoleAny:
	case "":
		role = repository.DonationRoleAny
	default:
		return nil, fmt.Errorf("%w: unknown donation role %q", ErrValidation, role)
	}
	txs, err := s.donations.FindByUser(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load donations for user %s: %w", userID, err)
	}
	return txs, nil
}

func (s *listingService) DonationStats(ctx context.Context, userID string) (*DonationStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	}

	counts, err := s.listings.StatusCountsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings for user %s: %w", userID, err)
	}
	stats := &DonationStats{}
	for st, n := range counts {
		stats.Listings.Total += n
		switch st {
		case status.ListingAvailable:
			stats.Listings.Available += n
		case status.ListingClaimed:
			stats.Listings.Claimed += n
		case status.ListingCompleted:
			stats.Listings.Completed += n
		}
	}

	txs, err := s.donations.FindByUser(ctx, userID, repository.DonationRoleAny)
	if err != nil {
		return nil, fmt.Errorf("failed to load donations for user %s: %w", userID, err)
	}
	for _, tx := range txs {
		if tx.DonorID == userID {
			stats.DonationsGiven++
			if tx.Status == entity.TransactionCompleted {
				stats.GivenCompleted++
			}
		}
		if tx.RecipientID == userID {
			stats.DonationsReceived++
			if tx.Status == entity.TransactionCompleted {
				stats.ReceivedCompleted++
			}
		}
	}
	return stats, nil
}

func (s *listingService) recordHistory(ctx context.Context, listingID string, st status.ListingStatus, actorID, notes string) {
	if _, err := s.listings.AppendHistory(ctx, &entity.ListingStatusHistory{
		ListingID: listingID,
		Status:    st,
		ChangedBy: actorID,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warnf("Failed to record history for listing %s (%s): %v", listingID, st, err)
	}
}

func (s *listingService) invalidate(ctx context.Context, listingID string) {
	if err := s.cache.Delete(ctx, listingID); err != nil {
		s.log.Warnf("Failed to invalidate cache for listing %s: %v", listingID, err)
	}
}

func (s *listingService) notifyListingCounterparty(ctx context.Context, listing *entity.Listing, actorID string, newStatus status.ListingStatus) {
	recipient := ""
	switch {
	case actorID == listing.OwnerID && listing.DonorID != "":
		recipient = listing.DonorID
	case actorID != listing.OwnerID:
		recipient = listing.OwnerID
	}
	if recipient == "" {
		return
	}

	cfg, _ := status.ListingStatusConfig(newStatus)
	if _, err := s.notifier.Notify(ctx, recipient, status.NotificationStatusUpdate,
		"Listing Update", fmt.Sprintf("Listing %q is now %s", listing.Title, cfg.Label),
		map[string]string{"listing_id": listing.ID, "status": string(newStatus)}); err != nil {
		s.log.Warnf("Failed to notify user %s about listing %s update: %v", recipient, listing.ID, err)
	}
}
