package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"groupdump/internal/domain"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError maps domain error kinds to HTTP statuses. Internal causes
// are logged, never echoed to the caller.
func respondError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	message := err.Error()

	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindProcessor:
		status = http.StatusBadGateway
	default:
		log.Error().Err(err).Msg("internal error")
		message = "internal error"
	}

	respondJSON(w, status, map[string]any{
		"error": map[string]any{"kind": kind.String(), "message": message},
	})
}

func badRequest(w http.ResponseWriter, err error) {
	respondError(w, domain.Validation("%s", err.Error()))
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.Validation("invalid %s", name)
	}
	return id, nil
}
