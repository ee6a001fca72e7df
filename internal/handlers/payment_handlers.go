package handlers

import (
	"net/http"
)

func (h *Handlers) funding(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}

	status, err := h.svc.Funding(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, fundingStatusView(status))
}

func (h *Handlers) beginPaymentSetup(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err)
		return
	}
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}

	intent, err := h.svc.BeginPaymentSetup(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"setup_intent_id": intent.ID,
		"client_secret":   intent.ClientSecret,
		"status":          intent.Status,
	})
}

func (h *Handlers) confirmPaymentSetup(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err)
		return
	}
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}

	member, err := h.svc.ConfirmPaymentSetup(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"group_id":       member.GroupID,
		"user_id":        member.UserID,
		"payment_status": member.PaymentStatus,
	})
}
