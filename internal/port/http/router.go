package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
)

// NewRouter wires all endpoints. Reads on a single listing are public; every
// lifecycle mutation and everything user-scoped requires a valid token.
func NewRouter(
	listings *ListingHandler,
	orders *OrderHandler,
	notifications *NotificationHandler,
	jwtSecret string,
	log logger.Logger,
) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(RequestLogger(log))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Get("/api/listings/{id}", listings.HandleGetListing)
	mux.Get("/api/listings/{id}/history", listings.HandleListingHistory)

	mux.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret, log))

		r.Post("/api/listings", listings.HandleCreateListing)
		r.Patch("/api/listings/{id}/status", listings.HandleUpdateListingStatus)
		r.Post("/api/listings/{id}/claim", listings.HandleClaimListing)
		r.Post("/api/listings/{id}/complete", listings.HandleCompleteListing)
		r.Post("/api/listings/photos", listings.HandleUploadDeliveryPhoto)
		r.Get("/api/users/me/donations", listings.HandleUserDonations)
		r.Get("/api/users/me/stats", listings.HandleDonationStats)

		r.Post("/api/orders", orders.HandleCreateOrder)
		r.Get("/api/orders/{id}", orders.HandleGetOrder)
		r.Patch("/api/orders/{id}/status", orders.HandleUpdateOrderStatus)
		r.Post("/api/orders/{id}/cancel", orders.HandleCancelOrder)
		r.Get("/api/users/me/orders", orders.HandleCustomerOrders)
		r.Get("/api/business/orders", orders.HandleBusinessOrders)
		r.Get("/api/business/stats", orders.HandleBusinessStats)

		r.Get("/api/notifications", notifications.HandleListNotifications)
		r.Get("/api/notifications/unread-count", notifications.HandleUnreadCount)
		r.Patch("/api/notifications/{id}/read", notifications.HandleMarkRead)
		r.Patch("/api/notifications/read-all", notifications.HandleMarkAllRead)
		r.Delete("/api/notifications/{id}", notifications.HandleDeleteNotification)
	})

	return mux
}
