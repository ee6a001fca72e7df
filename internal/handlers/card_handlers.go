package handlers

import (
	"net/http"
)

func (h *Handlers) card(w http.ResponseWriter, r *http.Request) {
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

	details, err := h.svc.Card(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cardDetailsView(details))
}

func (h *Handlers) freezeCard(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.FreezeCard(r.Context(), p.ID, groupID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"card_status": "frozen"})
}

func (h *Handlers) unfreezeCard(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.UnfreezeCard(r.Context(), p.ID, groupID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"card_status": "active"})
}

func (h *Handlers) cardTransactions(w http.ResponseWriter, r *http.Request) {
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

	txns, err := h.svc.Transactions(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactionViews(txns))
}
