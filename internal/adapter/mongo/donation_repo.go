package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/app/config"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const donationCollectionName = "donation_transactions"

type donationRepository struct {
	collection *mongo.Collection
}

func NewDonationRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.DonationRepository {
	return &donationRepository{
		collection: client.Database(cfg.Database).Collection(donationCollectionName),
	}
}

func (r *donationRepository) Create(ctx context.Context, tx *entity.DonationTransaction) (string, error) {
	res, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to create donation transaction: %w", err)
	}
	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *donationRepository) CompleteByListingID(ctx context.Context, listingID string, deliveryDate time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"status":        entity.TransactionCompleted,
			"delivery_date": deliveryDate,
			"updated_at":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"listing_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("failed to complete donation transaction for listing %s: %w", listingID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *donationRepository) FindByUser(ctx context.Context, userID string, role repository.DonationRole) ([]entity.DonationTransaction, error) {
	var filter bson.M
	switch role {
	case repository.DonationRoleDonor:
		filter = bson.M{"donor_id": userID}
	case repository.DonationRoleRecipient:
		filter = bson.M{"recipient_id": userID}
	default:
		filter = bson.M{"$or": bson.A{
			bson.M{"donor_id": userID},
			bson.M{"recipient_id": userID},
		}}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list donation transactions for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var rows []entity.DonationTransaction
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode donation transactions: %w", err)
	}
	return rows, nil
}
