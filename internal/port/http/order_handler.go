package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/service"
)

type OrderHandler struct {
	orders service.OrderService
	log    logger.Logger
}

func NewOrderHandler(orders service.OrderService, log logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

type createOrderItemRequest struct {
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name"`
	ProductDescription string  `json:"product_description"`
	ProductImageURL    string  `json:"product_image_url"`
	Quantity           int     `json:"quantity"`
	PricePerUnit       float64 `json:"price_per_unit"`
}

type createOrderRequest struct {
	BusinessID          string                   `json:"business_id"`
	DeliveryMethod      string                   `json:"delivery_method"`
	DeliveryAddress     string                   `json:"delivery_address"`
	CustomerName        string                   `json:"customer_name"`
	CustomerPhone       string                   `json:"customer_phone"`
	CustomerEmail       string                   `json:"customer_email"`
	SpecialInstructions string                   `json:"special_instructions"`
	Items               []createOrderItemRequest `json:"items"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	ID                  string     `json:"id"`
	OrderNumber         string     `json:"order_number"`
	CustomerID          string     `json:"customer_id"`
	BusinessID          string     `json:"business_id"`
	Status              string     `json:"status"`
	StatusLabel         string     `json:"status_label"`
	NextStatuses        []string   `json:"next_statuses"`
	DeliveryMethod      string     `json:"delivery_method"`
	DeliveryAddress     string     `json:"delivery_address,omitempty"`
	CustomerName        string     `json:"customer_name,omitempty"`
	CustomerPhone       string     `json:"customer_phone,omitempty"`
	CustomerEmail       string     `json:"customer_email,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	TotalAmount         float64    `json:"total_amount"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toOrderResponse(o *entity.Order) orderResponse {
	cfg, _ := status.OrderStatusConfig(o.Status)
	next := status.NextOrderStatuses(o.Status)
	nextStrs := make([]string, len(next))
	for i, s := range next {
		nextStrs[i] = string(s)
	}
	return orderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerID:          o.CustomerID,
		BusinessID:          o.BusinessID,
		Status:              string(o.Status),
		StatusLabel:         cfg.Label,
		NextStatuses:        nextStrs,
		DeliveryMethod:      string(o.DeliveryMethod),
		DeliveryAddress:     o.DeliveryAddress,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		CustomerEmail:       o.CustomerEmail,
		SpecialInstructions: o.SpecialInstructions,
		TotalAmount:         o.TotalAmount,
		ConfirmedAt:         o.ConfirmedAt,
		CompletedAt:         o.CompletedAt,
		CancelledAt:         o.CancelledAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

type orderItemResponse struct {
	ID                 string  `json:"id"`
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name"`
	ProductDescription string  `json:"product_description,omitempty"`
	ProductImageURL    string  `json:"product_image_url,omitempty"`
	Quantity           int     `json:"quantity"`
	PricePerUnit       float64 `json:"price_per_unit"`
	Subtotal           float64 `json:"subtotal"`
}

type orderHistoryResponse struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type orderDetailsResponse struct {
	Order   orderResponse          `json:"order"`
	Items   []orderItemResponse    `json:"items"`
	History []orderHistoryResponse `json:"history"`
}

func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.OrderItemInput{
			ProductID:          it.ProductID,
			ProductName:        it.ProductName,
			ProductDescription: it.ProductDescription,
			ProductImageURL:    it.ProductImageURL,
			Quantity:           it.Quantity,
			PricePerUnit:       it.PricePerUnit,
		}
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderParams{
		CustomerID:          userID,
		BusinessID:          req.BusinessID,
		DeliveryMethod:      status.DeliveryMethod(req.DeliveryMethod),
		DeliveryAddress:     req.DeliveryAddress,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		SpecialInstructions: req.SpecialInstructions,
		Items:               items,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	details, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := orderDetailsResponse{
		Order:   toOrderResponse(&details.Order),
		Items:   make([]orderItemResponse, len(details.Items)),
		History: make([]orderHistoryResponse, len(details.History)),
	}
	for i, it := range details.Items {
		resp.Items[i] = orderItemResponse{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			ProductName:        it.ProductName,
			ProductDescription: it.ProductDescription,
			ProductImageURL:    it.ProductImageURL,
			Quantity:           it.Quantity,
			PricePerUnit:       it.PricePerUnit,
			Subtotal:           it.Subtotal,
		}
	}
	for i, row := range details.History {
		resp.History[i] = orderHistoryResponse{
			Status:    string(row.Status),
			ChangedBy: row.ChangedBy,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt,
		}
	}
	writeJSON(w, h.log, http.StatusOK, resp)
}

func (h *OrderHandler) HandleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	orders, err := h.orders.CustomerOrders(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toOrderListResponse(orders))
}

func (h *OrderHandler) HandleBusinessOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	filter := status.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.orders.BusinessOrders(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toOrderListResponse(orders))
}

func (h *OrderHandler) HandleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status.OrderStatus(req.Status), userID, req.Notes)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req cancelOrderRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	order, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), userID, req.Reason)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) HandleBusinessStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	stats, err := h.orders.BusinessStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for st, n := range stats.ByStatus {
		byStatus[string(st)] = n
	}
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"total":     stats.Total,
		"by_status": byStatus,
		"completed": stats.Completed,
		"revenue":   stats.Revenue,
	})
}

func toOrderListResponse(orders []entity.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}
