package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"groupdump/internal/core"
)

type createVendorRequest struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	ServiceAreas string          `json:"service_areas"`
	PricingTiers json.RawMessage `json:"pricing_tiers"`
}

func (h *Handlers) createVendor(w http.ResponseWriter, r *http.Request) {
	var req createVendorRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	vendor, err := h.svc.CreateVendor(r.Context(), core.CreateVendorInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		ServiceAreas: req.ServiceAreas,
		PricingTiers: req.PricingTiers,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, vendorView(vendor))
}

func (h *Handlers) listVendors(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	vendors, err := h.svc.ListVendors(r.Context(), offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]VendorView, 0, len(vendors))
	for i := range vendors {
		views = append(views, vendorView(&vendors[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handlers) getVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, err := pathUUID(r, "vendorID")
	if err != nil {
		respondError(w, err)
		return
	}

	vendor, err := h.svc.GetVendor(r.Context(), vendorID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, vendorView(vendor))
}
