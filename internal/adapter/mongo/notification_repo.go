package mongo

import (
	"context"
	"fmt"

	"github.com/omar-farha/ne3ma-service/internal/app/config"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.NotificationRepository {
	return &notificationRepository{
		collection: client.Database(cfg.Database).Collection(notificationCollectionName),
	}
}

func (r *notificationRepository) Insert(ctx context.Context, n *entity.Notification) (string, error) {
	res, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}
	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, params repository.ListNotificationsParams) ([]entity.Notification, error) {
	filter := bson.M{"user_id": params.UserID}
	if params.UnreadOnly {
		filter["read"] = false
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if params.Limit > 0 {
		findOptions.SetLimit(int64(params.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", params.UserID, err)
	}
	defer cursor.Close(ctx)

	var rows []entity.Notification
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return rows, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", repository.ErrNotFound)
	}

	// Scoped by user_id: a user can only touch their own rows. Matching an
	// already-read row is a no-op success.
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read for user %s: %w", userID, err)
	}
	return result.ModifiedCount, nil
}

func (r *notificationRepository) Delete(ctx context.Context, notificationID, userID string) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", repository.ErrNotFound)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", notificationID, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
