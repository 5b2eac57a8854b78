package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/app/config"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	listingCollectionName        = "listings"
	listingHistoryCollectionName = "listing_status_history"
)

type listingRepository struct {
	collection *mongo.Collection
	history    *mongo.Collection
}

func NewListingRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ListingRepository {
	db := client.Database(cfg.Database)
	return &listingRepository{
		collection: db.Collection(listingCollectionName),
		history:    db.Collection(listingHistoryCollectionName),
	}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	res, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return "", fmt.Errorf("failed to create listing: %w", err)
	}
	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *listingRepository) GetByID(ctx context.Context, listingID string) (*entity.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing ID format: %w", repository.ErrNotFound)
	}

	var listing entity.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing by ID %s: %w", listingID, err)
	}
	listing.ID = listingID
	return &listing, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, params repository.UpdateListingStatusParams) error {
	objID, err := primitive.ObjectIDFromHex(params.ListingID)
	if err != nil {
		return fmt.Errorf("invalid listing ID format: %w", repository.ErrNotFound)
	}

	set := bson.M{
		"status":     params.Status,
		"updated_at": time.Now().UTC(),
	}
	unset := bson.M{}

	if params.ClaimedAt != nil {
		set["claimed_at"] = *params.ClaimedAt
	}
	if params.CompletedAt != nil {
		set["completed_at"] = *params.CompletedAt
	}
	if params.DeliveryNotes != "" {
		set["delivery_notes"] = params.DeliveryNotes
	}
	if len(params.DeliveryPhotos) > 0 {
		set["delivery_photos"] = params.DeliveryPhotos
	}
	if params.ClearClaim {
		unset["donor_id"] = ""
		unset["claimed_at"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing status for ID %s: %w", params.ListingID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *listingRepository) ClaimIfAvailable(ctx context.Context, listingID, donorID string, claimedAt time.Time) error {
	objID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("invalid listing ID format: %w", repository.ErrNotFound)
	}

	// Compare-and-swap: the filter includes the expected prior status so two
	// concurrent claimants cannot both match.
	filter := bson.M{
		"_id":    objID,
		"status": status.ListingAvailable,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     status.ListingClaimed,
			"donor_id":   donorID,
			"claimed_at": claimedAt,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim listing %s: %w", listingID, err)
	}
	if result.MatchedCount == 0 {
		errFind := r.collection.FindOne(ctx, bson.M{"_id": objID}).Err()
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return repository.ErrStatusConflict
	}
	return nil
}

func (r *listingRepository) StatusCountsByOwner(ctx context.Context, ownerID string) (map[status.ListingStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate listing counts for owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status status.ListingStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode listing counts: %w", err)
	}

	counts := make(map[status.ListingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *listingRepository) AppendHistory(ctx context.Context, row *entity.ListingStatusHistory) (string, error) {
	res, err := r.history.InsertOne(ctx, row)
	if err != nil {
		return "", fmt.Errorf("failed to append listing status history: %w", err)
	}
	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *listingRepository) HistoryByListingID(ctx context.Context, listingID string) ([]entity.ListingStatusHistory, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.history.Find(ctx, bson.M{"listing_id": listingID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history for listing %s: %w", listingID, err)
	}
	defer cursor.Close(ctx)

	var rows []entity.ListingStatusHistory
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status history: %w", err)
	}
	return rows, nil
}
