package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"groupdump/internal/core"
)

type createRentalRequest struct {
	GroupID      uuid.UUID `json:"group_id"`
	VendorID     uuid.UUID `json:"vendor_id"`
	Size         string    `json:"size"`
	Duration     int       `json:"duration_days"`
	TotalCost    float64   `json:"total_cost"`
	DeliveryDate time.Time `json:"delivery_date"`
}

func (h *Handlers) createRental(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req createRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	rental, err := h.svc.CreateRental(r.Context(), p.ID, core.CreateRentalInput{
		GroupID:      req.GroupID,
		VendorID:     req.VendorID,
		Size:         req.Size,
		Duration:     req.Duration,
		TotalCost:    req.TotalCost,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rentalView(rental))
}

func (h *Handlers) listRentals(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	rentals, err := h.svc.ListRentals(r.Context(), p.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]RentalView, 0, len(rentals))
	for i := range rentals {
		views = append(views, rentalView(&rentals[i]))
	}
	respondJSON(w, http.StatusOK, views)
}
