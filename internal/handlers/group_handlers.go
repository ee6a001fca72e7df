package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"groupdump/internal/auth"
	"groupdump/internal/core"
	"groupdump/internal/domain"
)

type slotRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type inviteeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createGroupRequest struct {
	Name            string           `json:"name"`
	Address         string           `json:"address"`
	MaxParticipants int              `json:"max_participants"`
	VendorID        *uuid.UUID       `json:"vendor_id"`
	Slots           []slotRequest    `json:"time_slots"`
	Invitees        []inviteeRequest `json:"invitees"`
}

type joinGroupRequest struct {
	SlotIDs []uuid.UUID `json:"slot_ids"`
}

type redeemInviteRequest struct {
	Token   string      `json:"token"`
	SlotIDs []uuid.UUID `json:"slot_ids"`
}

type selectionsRequest struct {
	SlotIDs []uuid.UUID `json:"slot_ids"`
}

func principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, domain.Forbidden("not authenticated")
	}
	return p, nil
}

func (h *Handlers) createGroup(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	in := core.CreateGroupInput{
		Name:            req.Name,
		Address:         req.Address,
		MaxParticipants: req.MaxParticipants,
		VendorID:        req.VendorID,
	}
	for _, s := range req.Slots {
		in.Slots = append(in.Slots, core.SlotInput{StartDate: s.StartDate, EndDate: s.EndDate})
	}
	for _, inv := range req.Invitees {
		in.Invitees = append(in.Invitees, core.InviteeInput{Name: inv.Name, Email: inv.Email, Phone: inv.Phone})
	}

	group, err := h.svc.CreateGroup(r.Context(), p.ID, in)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, groupView(group))
}

func (h *Handlers) listGroups(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	groups, err := h.svc.ListGroups(r.Context(), offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]GroupView, 0, len(groups))
	for i := range groups {
		views = append(views, groupView(&groups[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handlers) getGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}

	group, err := h.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, groupView(group))
}

func (h *Handlers) deleteGroup(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteGroup(r.Context(), p.ID, groupID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) joinGroup(w http.ResponseWriter, r *http.Request) {
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

	var req joinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	member, err := h.svc.JoinGroup(r.Context(), p.ID, groupID, req.SlotIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"group_id":       member.GroupID,
		"user_id":        member.UserID,
		"joined_at":      member.JoinedAt,
		"payment_status": member.PaymentStatus,
	})
}

func (h *Handlers) redeemInvite(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req redeemInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	member, err := h.svc.RedeemInvite(r.Context(), p.ID, req.Token, req.SlotIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"group_id":       member.GroupID,
		"user_id":        member.UserID,
		"joined_at":      member.JoinedAt,
		"payment_status": member.PaymentStatus,
	})
}

func (h *Handlers) groupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}

	members, err := h.svc.GroupMembers(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, memberViews(members))
}

func (h *Handlers) groupInvitees(w http.ResponseWriter, r *http.Request) {
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

	invitees, err := h.svc.GroupInvitees(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, inviteeViews(invitees))
}

func (h *Handlers) setSelections(w http.ResponseWriter, r *http.Request) {
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

	var req selectionsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	if err := h.svc.SetSelections(r.Context(), p.ID, groupID, req.SlotIDs); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) slotAnalysis(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathUUID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}

	analysis, err := h.svc.AnalyzeSlots(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, slotAnalysisView(analysis))
}

func (h *Handlers) scheduleService(w http.ResponseWriter, r *http.Request) {
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

	group, err := h.svc.ScheduleService(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, groupView(group))
}

func (h *Handlers) completeGroup(w http.ResponseWriter, r *http.Request) {
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

	group, err := h.svc.CompleteGroup(r.Context(), p.ID, groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, groupView(group))
}
