package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/omar-farha/ne3ma-service/internal/adapter/email"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/repository"
)

type OrderItemInput struct {
	ProductID          string
	ProductName        string
	ProductDescription string
	ProductImageURL    string
	Quantity           int
	PricePerUnit       float64
}

type CreateOrderParams struct {
	CustomerID          string
	BusinessID          string
	DeliveryMethod      status.DeliveryMethod
	DeliveryAddress     string
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	SpecialInstructions string
	Items               []OrderItemInput
}

// OrderDetails is the full read model for a single order.
type OrderDetails struct {
	Order   entity.Order
	Items   []entity.OrderItem
	History []entity.OrderStatusHistory
}

// BusinessOrderStats summarizes a business's order book. Revenue counts
// completed orders only.
type BusinessOrderStats struct {
	Total     int64
	ByStatus  map[status.OrderStatus]int64
	Completed int64
	Revenue   float64
}

type OrderService interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID, actorID string) (*OrderDetails, error)
	CustomerOrders(ctx context.Context, customerID string) ([]entity.Order, error)
	BusinessOrders(ctx context.Context, businessID string, filter status.OrderStatus) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus status.OrderStatus, actorID, notes string) (*entity.Order, error)
	Cancel(ctx context.Context, orderID, actorID, reason string) (*entity.Order, error)
	BusinessStats(ctx context.Context, businessID string) (*BusinessOrderStats, error)
}

type orderService struct {
	orders   repository.OrderRepository
	notifier Notifier
	mailer   email.EmailSender
	log      logger.Logger
}

// NewOrderService wires the order lifecycle. mailer may be nil when SMTP is
// not configured; confirmation emails are then skipped.
func NewOrderService(
	orders repository.OrderRepository,
	notifier Notifier,
	mailer email.EmailSender,
	log logger.Logger,
) OrderService {
	return &orderService{orders: orders, notifier: notifier, mailer: mailer, log: log}
}

// generateOrderNumber produces a short human-readable reference such as
// ORD-9F2C41A7. Uniqueness comes from the UUID prefix; collisions are
// improbable at this volume and the database id remains the real key.
func generateOrderNumber() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:8])
}

func (s *orderService) CreateOrder(ctx context.Context, params CreateOrderParams) (*entity.Order, error) {
	items := make([]entity.OrderItem, 0, len(params.Items))
	for i, in := range params.Items {
		item, err := entity.NewOrderItem(in.ProductID, in.ProductName, in.Quantity, in.PricePerUnit)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrValidation, i, err)
		}
		item.ProductDescription = in.ProductDescription
		item.ProductImageURL = in.ProductImageURL
		items = append(items, *item)
	}

	order, err := entity.NewOrder(params.CustomerID, params.BusinessID, params.DeliveryMethod, params.DeliveryAddress, items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	order.OrderNumber = generateOrderNumber()
	order.CustomerName = params.CustomerName
	order.CustomerPhone = params.CustomerPhone
	order.CustomerEmail = params.CustomerEmail
	order.SpecialInstructions = params.SpecialInstructions

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		s.log.Errorf("Failed to create order for customer %s: %v", params.CustomerID, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = id

	for i := range items {
		items[i].OrderID = id
	}
	if err := s.orders.InsertItems(ctx, items); err != nil {
		s.log.Errorf("Order %s created but item insert failed: %v", id, err)
		return nil, fmt.Errorf("%w: order %s exists but its items were not recorded: %v", ErrPartialCreate, id, err)
	}

	if _, err := s.orders.AppendHistory(ctx, &entity.OrderStatusHistory{
		OrderID:   id,
		Status:    status.OrderPending,
		ChangedBy: params.CustomerID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warnf("Failed to record initial history for order %s: %v", id, err)
	}

	if _, err := s.notifier.Notify(ctx, params.BusinessID, status.NotificationStatusUpdate,
		"New Order", fmt.Sprintf("Order %s is waiting for confirmation", order.OrderNumber),
		map[string]string{"order_id": id, "order_number": order.OrderNumber}); err != nil {
		s.log.Warnf("Failed to notify business %s about order %s: %v", params.BusinessID, id, err)
	}

	s.log.Infof("Order %s (%s) created by customer %s for business %s, total %.2f",
		id, order.OrderNumber, params.CustomerID, params.BusinessID, order.TotalAmount)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID, actorID string) (*OrderDetails, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID cannot be empty", ErrValidation)
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorID != order.CustomerID && actorID != order.BusinessID {
		return nil, fmt.Errorf("%w: user %s may not view order %s", ErrUnauthorized, actorID, orderID)
	}

	items, err := s.orders.ItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for order %s: %w", orderID, err)
	}
	history, err := s.orders.HistoryByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for order %s: %w", orderID, err)
	}
	return &OrderDetails{Order: *order, Items: items, History: history}, nil
}

func (s *orderService) CustomerOrders(ctx context.Context, customerID string) ([]entity.Order, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer ID cannot be empty", ErrValidation)
	}
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

func (s *orderService) BusinessOrders(ctx context.Context, businessID string, filter status.OrderStatus) ([]entity.Order, error) {
	if businessID == "" {
		return nil, fmt.Errorf("%w: business ID cannot be empty", ErrValidation)
	}
	if filter != "" && !status.ValidOrderStatus(filter) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, filter)
	}
	orders, err := s.orders.ListByBusiness(ctx, repository.ListBusinessOrdersParams{
		BusinessID: businessID,
		Status:     filter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for business %s: %w", businessID, err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, newStatus status.OrderStatus, actorID, notes string) (*entity.Order, error) {
	if orderID == "" || actorID == "" {
		return nil, fmt.Errorf("%w: order ID and actor ID cannot be empty", ErrValidation)
	}
	if !status.ValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, newStatus)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !status.OrderTransitionLegal(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: order %s cannot go from %s to %s", ErrInvalidTransition, orderID, order.Status, newStatus)
	}
	if !status.CanActorUpdateOrder(actorID, order.CustomerID, order.BusinessID, order.Status, newStatus) {
		return nil, fmt.Errorf("%w: user %s may not move order %s from %s to %s", ErrUnauthorized, actorID, orderID, order.Status, newStatus)
	}

	now := time.Now().UTC()
	params := repository.UpdateOrderStatusParams{OrderID: orderID, Status: newStatus}
	switch newStatus {
	case status.OrderConfirmed:
		params.ConfirmedAt = &now
	case status.OrderCompleted:
		params.CompletedAt = &now
	case status.OrderCancelled:
		params.CancelledAt = &now
	}
	if err := s.orders.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to update order %s status: %w", orderID, err)
	}

	if _, err := s.orders.AppendHistory(ctx, &entity.OrderStatusHistory{
		OrderID:   orderID,
		Status:    newStatus,
		ChangedBy: actorID,
		Notes:     notes,
		CreatedAt: now,
	}); err != nil {
		s.log.Warnf("Failed to record history for order %s (%s): %v", orderID, newStatus, err)
	}

	s.notifyOrderCounterparty(ctx, order, actorID, newStatus)
	if newStatus == status.OrderConfirmed {
		s.sendConfirmationEmail(ctx, order)
	}

	order.Status = newStatus
	order.ConfirmedAt = coalesceTime(order.ConfirmedAt, params.ConfirmedAt)
	order.CompletedAt = coalesceTime(order.CompletedAt, params.CompletedAt)
	order.CancelledAt = coalesceTime(order.CancelledAt, params.CancelledAt)
	order.UpdatedAt = now
	s.log.Infof("Order %s moved to %s by user %s", orderID, newStatus, actorID)
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID, actorID, reason string) (*entity.Order, error) {
	return s.UpdateStatus(ctx, orderID, status.OrderCancelled, actorID, reason)
}

func (s *orderService) BusinessStats(ctx context.Context, businessID string) (*BusinessOrderStats, error) {
	if businessID == "" {
		return nil, fmt.Errorf("%w: business ID cannot be empty", ErrValidation)
	}
	orders, err := s.orders.ListByBusiness(ctx, repository.ListBusinessOrdersParams{BusinessID: businessID})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for business %s: %w", businessID, err)
	}

	stats := &BusinessOrderStats{ByStatus: make(map[status.OrderStatus]int64)}
	for _, o := range orders {
		stats.Total++
		stats.ByStatus[o.Status]++
		if o.Status == status.OrderCompleted {
			stats.Completed++
			stats.Revenue += o.TotalAmount
		}
	}
	return stats, nil
}

func (s *orderService) getOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	return order, nil
}

func (s *orderService) notifyOrderCounterparty(ctx context.Context, order *entity.Order, actorID string, newStatus status.OrderStatus) {
	recipient := order.CustomerID
	if actorID == order.CustomerID {
		recipient = order.BusinessID
	}

	cfg, _ := status.OrderStatusConfig(newStatus)
	if _, err := s.notifier.Notify(ctx, recipient, status.NotificationStatusUpdate,
		"Order Update", fmt.Sprintf("Order %s is now %s", order.OrderNumber, cfg.Label),
		map[string]string{"order_id": order.ID, "order_number": order.OrderNumber, "status": string(newStatus)}); err != nil {
		s.log.Warnf("Failed to notify user %s about order %s update: %v", recipient, order.ID, err)
	}
}

func (s *orderService) sendConfirmationEmail(ctx context.Context, order *entity.Order) {
	if s.mailer == nil || order.CustomerEmail == "" {
		return
	}

	subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
	bodyText := fmt.Sprintf(
		"Hello %s,\n\nYour order %s has been confirmed and is being prepared.\nTotal: %.2f EGP\n\nThank you for using Ne3ma.",
		order.CustomerName, order.OrderNumber, order.TotalAmount)
	if err := s.mailer.Send(ctx, []string{order.CustomerEmail}, subject, "", bodyText); err != nil {
		s.log.Warnf("Failed to send confirmation email for order %s: %v", order.ID, err)
	}
}

func coalesceTime(current, updated *time.Time) *time.Time {
	if updated != nil {
		return updated
	}
	return current
}
