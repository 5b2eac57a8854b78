package repository

import (
	"context"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
)

// UpdateListingStatusParams carries a listing status write plus the derived
// field changes that accompany particular target statuses.
type UpdateListingStatusParams struct {
	ListingID string
	Status    status.ListingStatus

	// ClaimedAt is set when entering claimed; ClearClaim removes donor_id and
	// claimed_at when the listing returns to available.
	ClaimedAt  *time.Time
	ClearClaim bool

	// CompletedAt and the delivery fields are set when entering completed.
	CompletedAt    *time.Time
	DeliveryNotes  string
	DeliveryPhotos []string
}

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) (string, error)
	GetByID(ctx context.Context, listingID string) (*entity.Listing, error)
	UpdateStatus(ctx context.Context, params UpdateListingStatusParams) error

	// ClaimIfAvailable atomically moves the listing to claimed and records the
	// donor, but only if the listing is still available. Returns
	// ErrStatusConflict when the listing exists and is no longer available.
	ClaimIfAvailable(ctx context.Context, listingID, donorID string, claimedAt time.Time) error

	StatusCountsByOwner(ctx context.Context, ownerID string) (map[status.ListingStatus]int64, error)

	AppendHistory(ctx context.Context, row *entity.ListingStatusHistory) (string, error)
	HistoryByListingID(ctx context.Context, listingID string) ([]entity.ListingStatusHistory, error)
}

type DonationRole string

const (
	DonationRoleDonor     DonationRole = "donor"
	DonationRoleRecipient DonationRole = "recipient"
	DonationRoleAny       DonationRole = "all"
)

type DonationRepository interface {
	Create(ctx context.Context, tx *entity.DonationTransaction) (string, error)
	// CompleteByListingID marks the transaction attached to the listing as
	// completed and stamps its delivery date.
	CompleteByListingID(ctx context.Context, listingID string, deliveryDate time.Time) error
	FindByUser(ctx context.Context, userID string, role DonationRole) ([]entity.DonationTransaction, error)
}
