package repository

import (
	"context"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
)

type UpdateOrderStatusParams struct {
	OrderID string
	Status  status.OrderStatus

	// Exactly one of these is set depending on the target status.
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

type ListBusinessOrdersParams struct {
	BusinessID string
	Status     status.OrderStatus // optional filter, empty means all
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (string, error)
	InsertItems(ctx context.Context, items []entity.OrderItem) error
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	ItemsByOrderID(ctx context.Context, orderID string) ([]entity.OrderItem, error)
	UpdateStatus(ctx context.Context, params UpdateOrderStatusParams) error
	ListByCustomer(ctx context.Context, customerID string) ([]entity.Order, error)
	ListByBusiness(ctx context.Context, params ListBusinessOrdersParams) ([]entity.Order, error)

	AppendHistory(ctx context.Context, row *entity.OrderStatusHistory) (string, error)
	HistoryByOrderID(ctx context.Context, orderID string) ([]entity.OrderStatusHistory, error)
}
