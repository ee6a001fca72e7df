package handlers

import (
	"net/http"

	"groupdump/internal/auth"
	"groupdump/internal/core"
	"groupdump/internal/domain"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), core.RegisterUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.auth.Issue(auth.Principal{ID: user.ID, Email: user.Email})
	if err != nil {
		respondError(w, domain.Internal(err))
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: userView(user)})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	user, err := h.svc.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.auth.Issue(auth.Principal{ID: user.ID, Email: user.Email})
	if err != nil {
		respondError(w, domain.Internal(err))
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: userView(user)})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, domain.Forbidden("not authenticated"))
		return
	}

	user, err := h.svc.GetUser(r.Context(), p.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, userView(user))
}
