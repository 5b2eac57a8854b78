package entity

import (
	"errors"
	"time"

	"github.com/omar-farha/ne3ma-service/internal/domain/status"
)

// Order is a commercial transaction between a customer and a business.
// Customer contact fields are snapshots taken at order time.
type Order struct {
	ID                  string                `bson:"_id,omitempty"`
	OrderNumber         string                `bson:"order_number"`
	CustomerID          string                `bson:"customer_id"`
	BusinessID          string                `bson:"business_id"`
	Status              status.OrderStatus    `bson:"status"`
	DeliveryMethod      status.DeliveryMethod `bson:"delivery_method"`
	DeliveryAddress     string                `bson:"delivery_address,omitempty"`
	CustomerName        string                `bson:"customer_name,omitempty"`
	CustomerPhone       string                `bson:"customer_phone,omitempty"`
	CustomerEmail       string                `bson:"customer_email,omitempty"`
	SpecialInstructions string                `bson:"special_instructions,omitempty"`
	TotalAmount         float64               `bson:"total_amount"`
	ConfirmedAt         *time.Time            `bson:"confirmed_at,omitempty"`
	CompletedAt         *time.Time            `bson:"completed_at,omitempty"`
	CancelledAt         *time.Time            `bson:"cancelled_at,omitempty"`
	CreatedAt           time.Time             `bson:"created_at"`
	UpdatedAt           time.Time             `bson:"updated_at"`
}

func NewOrder(customerID, businessID string, method status.DeliveryMethod, deliveryAddress string, items []OrderItem) (*Order, error) {
	if customerID == "" {
		return nil, errors.New("customer ID cannot be empty")
	}
	if businessID == "" {
		return nil, errors.New("business ID cannot be empty")
	}
	if !status.ValidDeliveryMethod(method) {
		return nil, errors.New("unknown delivery method")
	}
	if method == status.DeliveryDelivery && deliveryAddress == "" {
		return nil, errors.New("delivery address is required for delivery orders")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	now := time.Now().UTC()
	order := &Order{
		CustomerID:      customerID,
		BusinessID:      businessID,
		Status:          status.OrderPending,
		DeliveryMethod:  method,
		DeliveryAddress: deliveryAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range items {
		order.TotalAmount += item.Subtotal
	}
	return order, nil
}

// OrderItem is a line-item snapshot: product name, description, image and
// price are copied from the listing at order time and never recomputed, so a
// later price edit cannot change what the customer agreed to pay.
type OrderItem struct {
	ID                 string  `bson:"_id,omitempty"`
	OrderID            string  `bson:"order_id"`
	ProductID          string  `bson:"product_id"`
	ProductName        string  `bson:"product_name"`
	ProductDescription string  `bson:"product_description,omitempty"`
	ProductImageURL    string  `bson:"product_image_url,omitempty"`
	Quantity           int     `bson:"quantity"`
	PricePerUnit       float64 `bson:"price_per_unit"`
	Subtotal           float64 `bson:"subtotal"`
}

func NewOrderItem(productID, productName string, quantity int, pricePerUnit float64) (*OrderItem, error) {
	if productID == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if productName == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if pricePerUnit < 0 {
		return nil, errors.New("price per unit cannot be negative")
	}
	return &OrderItem{
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		Subtotal:     float64(quantity) * pricePerUnit,
	}, nil
}

// OrderStatusHistory mirrors ListingStatusHistory for orders.
type OrderStatusHistory struct {
	ID        string             `bson:"_id,omitempty"`
	OrderID   string             `bson:"order_id"`
	Status    status.OrderStatus `bson:"status"`
	ChangedBy string             `bson:"changed_by,omitempty"`
	Notes     string             `bson:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}
