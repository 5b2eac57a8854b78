package entity

import (
	"errors"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/status"
)

// Listing is a donation or marketplace item posted by its owner. DonorID is
// set while a donor has the listing claimed and cleared when it returns to
// available; CompletedAt is set exactly when the listing completes.
type Listing struct {
	ID             string               `bson:"_id,omitempty"`
	OwnerID        string               `bson:"owner_id"`
	DonorID        string               `bson:"donor_id,omitempty"`
	Title          string               `bson:"title"`
	Description    string               `bson:"description,omitempty"`
	ListingType    status.ListingType   `bson:"listing_type"`
	Category       status.Category      `bson:"category"`
	UrgencyLevel   status.UrgencyLevel  `bson:"urgency_level"`
	Status         status.ListingStatus `bson:"status"`
	Address        string               `bson:"address,omitempty"`
	Amount         string               `bson:"amount,omitempty"`
	Price          float64              `bson:"price,omitempty"`
	DeliveryNotes  string               `bson:"delivery_notes,omitempty"`
	DeliveryPhotos []string             `bson:"delivery_photos,omitempty"`
	ClaimedAt      *time.Time           `bson:"claimed_at,omitempty"`
	CompletedAt    *time.Time           `bson:"completed_at,omitempty"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

func NewListing(ownerID, title string, listingType status.ListingType, category status.Category, urgency status.UrgencyLevel) (*Listing, error) {
	if ownerID == "" {
		return nil, errors.New("owner ID cannot be empty")
	}
	if title == "" {
		return nil, errors.New("title cannot be empty")
	}
	if listingType == "" {
		listingType = status.ListingTypeDonation
	}
	if !status.ValidCategory(category) {
		return nil, errors.New("unknown category")
	}
	if urgency == "" {
		urgency = status.UrgencyModerate
	}
	if !status.ValidUrgencyLevel(urgency) {
		return nil, errors.New("unknown urgency level")
	}

	now := time.Now().UTC()
	return &Listing{
		OwnerID:      ownerID,
		Title:        title,
		ListingType:  listingType,
		Category:     category,
		UrgencyLevel: urgency,
		Status:       status.ListingAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ListingStatusHistory is an append-only audit row; one is written on every
// successful listing transition and rows are never mutated afterwards.
type ListingStatusHistory struct {
	ID        string               `bson:"_id,omitempty"`
	ListingID string               `bson:"listing_id"`
	Status    status.ListingStatus `bson:"status"`
	ChangedBy string               `bson:"changed_by"`
	Notes     string               `bson:"notes,omitempty"`
	CreatedAt time.Time            `bson:"created_at"`
}
