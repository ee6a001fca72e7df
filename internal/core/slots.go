package core

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"groupdump/internal/domain"
	"groupdump/internal/models"
)

// SlotTally is the consensus report for one candidate window.
type SlotTally struct {
	SlotID        uuid.UUID
	StartDate     string
	EndDate       string
	SelectedCount int
	SelectedBy    []string

	// IsUniversal is true when every current member selected the slot. The
	// engine highlights universal slots; it never auto-picks one.
	IsUniversal bool
}

// SlotAnalysis is the full consensus picture for a group.
type SlotAnalysis struct {
	GroupID      uuid.UUID
	TotalMembers int
	Slots        []SlotTally
}

// TallySlots is the pure consensus computation: given each slot's selecting
// member names (one entry per distinct member) and the current member
// count, it produces per-slot tallies. The count is of distinct members;
// the name list is deduplicated separately for display.
func TallySlots(slots []models.TimeSlot, totalMembers int, namesBySlot map[uuid.UUID][]string) []SlotTally {
	tallies := make([]SlotTally, 0, len(slots))
	for _, slot := range slots {
		selections := namesBySlot[slot.ID]
		names := dedupeNames(selections)
		sort.Strings(names)
		tallies = append(tallies, SlotTally{
			SlotID:        slot.ID,
			StartDate:     slot.StartDate,
			EndDate:       slot.EndDate,
			SelectedCount: len(selections),
			SelectedBy:    names,
			IsUniversal:   totalMembers > 0 && len(selections) == totalMembers,
		})
	}
	return tallies
}

// SetSelections replaces the member's selection set for the group. Slots
// not belonging to the group are rejected; an empty set is rejected only
// when the group defines at least one slot.
func (s *Service) SetSelections(ctx context.Context, userID, groupID uuid.UUID, slotIDs []uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.Status != models.GroupForming {
			return domain.Conflict("selections are frozen once the group is scheduled")
		}

		var member models.Member
		err = tx.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Forbidden("not a member of this group")
		}
		if err != nil {
			return domain.Internal(err)
		}

		groupSlots, err := groupSlotIDs(tx, groupID)
		if err != nil {
			return err
		}
		if len(groupSlots) > 0 && len(slotIDs) == 0 {
			return domain.Validation("at least one time slot must be selected")
		}
		for _, id := range slotIDs {
			if _, ok := groupSlots[id]; !ok {
				return domain.Validation("time slot %s does not belong to this group", id)
			}
		}

		// Replace, not merge.
		if err := tx.Where("member_id = ?", member.ID).Delete(&models.SlotSelection{}).Error; err != nil {
			return domain.Internal(err)
		}
		for _, slotID := range dedupe(slotIDs) {
			sel := &models.SlotSelection{MemberID: member.ID, TimeSlotID: slotID}
			if err := tx.Create(sel).Error; err != nil {
				return domain.Internal(err)
			}
		}
		return nil
	})
}

// AnalyzeSlots reports, per slot, how many and which members selected it
// and whether the selection is unanimous.
func (s *Service) AnalyzeSlots(ctx context.Context, groupID uuid.UUID) (*SlotAnalysis, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	var slots []models.TimeSlot
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Order("start_date").Find(&slots).Error; err != nil {
		return nil, domain.Internal(err)
	}

	var members []models.Member
	if err := s.db.WithContext(ctx).Preload("User").Preload("Selections").
		Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		return nil, domain.Internal(err)
	}

	namesBySlot := make(map[uuid.UUID][]string)
	for _, member := range members {
		for _, sel := range member.Selections {
			namesBySlot[sel.TimeSlotID] = append(namesBySlot[sel.TimeSlotID], member.User.Name)
		}
	}

	return &SlotAnalysis{
		GroupID:      groupID,
		TotalMembers: len(members),
		Slots:        TallySlots(slots, len(members), namesBySlot),
	}, nil
}

func groupSlotIDs(tx *gorm.DB, groupID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := tx.Model(&models.TimeSlot{}).Where("group_id = ?", groupID).Pluck("id", &ids).Error; err != nil {
		return nil, domain.Internal(err)
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
