package entity

import "time"

type TransactionStatus string

const (
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionCompleted TransactionStatus = "completed"
)

// DonationTransaction links a claimed listing to its donor/recipient pair.
// One is created per claim event and moved to completed together with the
// listing.
type DonationTransaction struct {
	ID           string            `bson:"_id,omitempty"`
	ListingID    string            `bson:"listing_id"`
	DonorID      string            `bson:"donor_id"`
	RecipientID  string            `bson:"recipient_id"`
	Status       TransactionStatus `bson:"status"`
	Notes        string            `bson:"notes,omitempty"`
	DeliveryDate *time.Time        `bson:"delivery_date,omitempty"`
	CreatedAt    time.Time         `bson:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at"`
}
