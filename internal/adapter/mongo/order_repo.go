package mongo

import (
	"context"
	"errors"
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

const (
	orderCollectionName        = "orders"
	orderItemCollectionName    = "order_items"
	orderHistoryCollectionName = "order_status_history"
)

type orderRepository struct {
	collection *mongo.Collection
	items      *mongo.Collection
	history    *mongo.Collection
}

func NewOrderRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.OrderRepository {
	db := client.Database(cfg.Database)
	return &orderRepository{
		collection: db.Collection(orderCollectionName),
		items:      db.Collection(orderItemCollectionName),
		history:    db.Collection(orderHistoryCollectionName),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (string, error) {
	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *orderRepository) InsertItems(ctx context.Context, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	if _, err := r.items.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	objID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order ID format: %w", repository.ErrNotFound)
	}

	var order entity.Order
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", orderID, err)
	}
	order.ID = orderID
	return &order, nil
}

func (r *orderRepository) ItemsByOrderID(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	cursor, err := r.items.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to list items for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	var items []entity.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	return items, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, params repository.UpdateOrderStatusParams) error {
	objID, err := primitive.ObjectIDFromHex(params.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order ID format: %w", repository.ErrNotFound)
	}

	set := bson.M{
		"status":     params.Status,
		"updated_at": time.Now().UTC(),
	}
	if params.ConfirmedAt != nil {
		set["confirmed_at"] = *params.ConfirmedAt
	}
	if params.CompletedAt != nil {
		set["completed_at"] = *params.CompletedAt
	}
	if params.CancelledAt != nil {
		set["cancelled_at"] = *params.CancelledAt
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update order status for ID %s: %w", params.OrderID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]entity.Order, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

func (r *orderRepository) ListByBusiness(ctx context.Context, params repository.ListBusinessOrdersParams) ([]entity.Order, error) {
	filter := bson.M{"business_id": params.BusinessID}
	if params.Status != "" {
		filter["status"] = params.Status
	}
	return r.list(ctx, filter)
}

func (r *orderRepository) list(ctx context.Context, filter bson.M) ([]entity.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode listed orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) AppendHistory(ctx context.Context, row *entity.OrderStatusHistory) (string, error) {
	res, err := r.history.InsertOne(ctx, row)
	if err != nil {
		return "", fmt.Errorf("failed to append order status history: %w", err)
	}
	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *orderRepository) HistoryByOrderID(ctx context.Context, orderID string) ([]entity.OrderStatusHistory, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.history.Find(ctx, bson.M{"order_id": orderID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	var rows []entity.OrderStatusHistory
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode order status history: %w", err)
	}
	return rows, nil
}
