package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"groupdump/internal/domain"
	"groupdump/internal/metrics"
	"groupdump/internal/models"
)

const maxWebhookBody = 1 << 20

type processorWebhookEvent struct {
	CardID            string `json:"card_id"`
	Amount            int64  `json:"amount"`
	MerchantName      string `json:"merchant_name"`
	Approved          bool   `json:"approved"`
	AuthorizationCode string `json:"authorization_code"`
}

// processorWebhook ingests card authorization events pushed by the payment
// processor. Events for unknown cards are rejected so a retrying sender
// stops; malformed payloads get a 400 without retry semantics.
func (h *Handlers) processorWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("malformed").Inc()
		badRequest(w, err)
		return
	}
	defer r.Body.Close()

	var evt processorWebhookEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		metrics.WebhookEvents.WithLabelValues("malformed").Inc()
		respondError(w, domain.Validation("malformed webhook payload"))
		return
	}
	if evt.CardID == "" {
		metrics.WebhookEvents.WithLabelValues("malformed").Inc()
		respondError(w, domain.Validation("card_id is required"))
		return
	}

	status := models.TransactionDeclined
	if evt.Approved {
		status = models.TransactionApproved
	}

	txn, err := h.svc.RecordTransaction(r.Context(), evt.CardID, evt.Amount, evt.MerchantName, status, evt.AuthorizationCode, raw)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			metrics.WebhookEvents.WithLabelValues("unknown_card").Inc()
		} else {
			metrics.WebhookEvents.WithLabelValues("error").Inc()
		}
		respondError(w, err)
		return
	}

	metrics.WebhookEvents.WithLabelValues("recorded").Inc()
	log.Info().
		Str("card_id", evt.CardID).
		Int64("amount_cents", evt.Amount).
		Str("status", status).
		Msg("card transaction recorded")

	respondJSON(w, http.StatusOK, map[string]any{"transaction_id": txn.ID})
}
