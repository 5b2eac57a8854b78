package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/omar-farha/ne3ma-service/internal/domain/entity"
	"github.com/omar-farha/ne3ma-service/internal/domain/status"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	"github.com/omar-farha/ne3ma-service/internal/repository"
	"github.com/omar-farha/ne3ma-service/internal/service"
)

const maxPhotoUploadBytes = 10 << 20

type ListingHandler struct {
	listings service.ListingService
	log      logger.Logger
}

func NewListingHandler(listings service.ListingService, log logger.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, log: log}
}

type createListingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ListingType string  `json:"listing_type"`
	Category    string  `json:"category"`
	Urgency     string  `json:"urgency_level"`
	Address     string  `json:"address"`
	Amount      string  `json:"amount"`
	Price       float64 `json:"price"`
}

type updateListingStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type claimListingRequest struct {
	Notes string `json:"notes"`
}

type completeListingRequest struct {
	DeliveryNotes  string   `json:"delivery_notes"`
	DeliveryPhotos []string `json:"delivery_photos"`
}

type listingResponse struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	DonorID        string     `json:"donor_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	ListingType    string     `json:"listing_type"`
	Category       string     `json:"category"`
	UrgencyLevel   string     `json:"urgency_level"`
	Status         string     `json:"status"`
	StatusLabel    string     `json:"status_label"`
	NextStatuses   []string   `json:"next_statuses"`
	Address        string     `json:"address,omitempty"`
	Amount         string     `json:"amount,omitempty"`
	Price          float64    `json:"price,omitempty"`
	DeliveryNotes  string     `json:"delivery_notes,omitempty"`
	DeliveryPhotos []string   `json:"delivery_photos,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toListingResponse(l *entity.Listing) listingResponse {
	cfg, _ := status.ListingStatusConfig(l.Status)
	next := status.NextListingStatuses(l.Status)
	nextStrs := make([]string, len(next))
	for i, s := range next {
		nextStrs[i] = string(s)
	}
	return listingResponse{
		ID:             l.ID,
		OwnerID:        l.OwnerID,
		DonorID:        l.DonorID,
		Title:          l.Title,
		Description:    l.Description,
		ListingType:    string(l.ListingType),
		Category:       string(l.Category),
		UrgencyLevel:   string(l.UrgencyLevel),
		Status:         string(l.Status),
		StatusLabel:    cfg.Label,
		NextStatuses:   nextStrs,
		Address:        l.Address,
		Amount:         l.Amount,
		Price:          l.Price,
		DeliveryNotes:  l.DeliveryNotes,
		DeliveryPhotos: l.DeliveryPhotos,
		ClaimedAt:      l.ClaimedAt,
		CompletedAt:    l.CompletedAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

type listingHistoryResponse struct {
	Status    string    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	listing, err := h.listings.Create(r.Context(), service.CreateListingParams{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		ListingType: status.ListingType(req.ListingType),
		Category:    status.Category(req.Category),
		Urgency:     status.UrgencyLevel(req.Urgency),
		Address:     req.Address,
		Amount:      req.Amount,
		Price:       req.Price,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, toListingResponse(listing))
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) HandleUpdateListingStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req updateListingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	listing, err := h.listings.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status.ListingStatus(req.Status), userID, req.Notes)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) HandleClaimListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req claimListingRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	listing, err := h.listings.Claim(r.Context(), chi.URLParam(r, "id"), userID, req.Notes)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) HandleCompleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req completeListingRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	listing, err := h.listings.Complete(r.Context(), chi.URLParam(r, "id"), userID, req.DeliveryNotes, req.DeliveryPhotos)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) HandleListingHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.listings.StatusHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make([]listingHistoryResponse, len(rows))
	for i, row := range rows {
		out[i] = listingHistoryResponse{
			Status:    string(row.Status),
			ChangedBy: row.ChangedBy,
			Notes:     row.Notes,
			CreatedAt: row.CreatedAt,
		}
	}
	writeJSON(w, h.log, http.StatusOK, out)
}

func (h *ListingHandler) HandleUploadDeliveryPhoto(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserIDFromContext(r.Context()); !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "missing photo file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoUploadBytes))
	if err != nil {
		http.Error(w, "failed to read photo file", http.StatusBadRequest)
		return
	}

	url, err := h.listings.UploadDeliveryPhoto(r.Context(), header.Filename, data)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, map[string]string{"url": url})
}

func (h *ListingHandler) HandleUserDonations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	role := repository.DonationRole(r.URL.Query().Get("role"))
	txs, err := h.listings.UserDonations(r.Context(), userID, role)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	type donationResponse struct {
		ID           string     `json:"id"`
		ListingID    string     `json:"listing_id"`
		DonorID      string     `json:"donor_id"`
		RecipientID  string     `json:"recipient_id"`
		Status       string     `json:"status"`
		Notes        string     `json:"notes,omitempty"`
		DeliveryDate *time.Time `json:"delivery_date,omitempty"`
		CreatedAt    time.Time  `json:"created_at"`
	}
	out := make([]donationResponse, len(txs))
	for i, tx := range txs {
		out[i] = donationResponse{
			ID:           tx.ID,
			ListingID:    tx.ListingID,
			DonorID:      tx.DonorID,
			RecipientID:  tx.RecipientID,
			Status:       string(tx.Status),
			Notes:        tx.Notes,
			DeliveryDate: tx.DeliveryDate,
			CreatedAt:    tx.CreatedAt,
		}
	}
	writeJSON(w, h.log, http.StatusOK, out)
}

func (h *ListingHandler) HandleDonationStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	stats, err := h.listings.DonationStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"listings": map[string]int64{
			"total":     stats.Listings.Total,
			"available": stats.Listings.Available,
			"claimed":   stats.Listings.Claimed,
			"completed": stats.Listings.Completed,
		},
		"donations_given":    stats.DonationsGiven,
		"donations_received": stats.DonationsReceived,
		"given_completed":    stats.GivenCompleted,
		"received_completed": stats.ReceivedCompleted,
	})
}
