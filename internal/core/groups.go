package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"groupdump/internal/domain"
	"groupdump/internal/events"
	"groupdump/internal/metrics"
	"groupdump/internal/models"
	"groupdump/internal/payment"
)

// SlotInput is a candidate time window supplied at group creation.
type SlotInput struct {
	StartDate string
	EndDate   string
}

// InviteeInput identifies a prospective member to mint a token for.
type InviteeInput struct {
	Name  string
	Email string
	Phone string
}

// CreateGroupInput is the group-creation request.
type CreateGroupInput struct {
	Name            string
	Address         string
	MaxParticipants int
	VendorID        *uuid.UUID
	Slots           []SlotInput
	Invitees        []InviteeInput
}

// lockGroup loads a group row under FOR UPDATE so capacity checks, token
// burns, and issuance guards serialize per group. The sqlite test driver
// drops the locking clause; its single-writer model serializes anyway.
func lockGroup(tx *gorm.DB, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("group not found")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &group, nil
}

// CreateGroup creates a group in the forming state, persists its candidate
// slots, mints invitee tokens, and auto-admits the creator as a member who
// selects every slot. The creator's selections act as the baseline
// consensus candidate. Invitation emails go out after commit, best effort.
func (s *Service) CreateGroup(ctx context.Context, creatorID uuid.UUID, in CreateGroupInput) (*models.Group, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("group name is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, domain.Validation("group address is required")
	}
	if in.MaxParticipants <= 0 {
		in.MaxParticipants = 5
	}
	if in.MaxParticipants < 1+len(in.Invitees) {
		return nil, domain.Validation("capacity %d cannot fit the creator plus %d invitees", in.MaxParticipants, len(in.Invitees))
	}
	for _, slot := range in.Slots {
		if slot.StartDate == "" || slot.EndDate == "" {
			return nil, domain.Validation("time slots require both start and end dates")
		}
	}
	for _, invitee := range in.Invitees {
		if !strings.Contains(invitee.Email, "@") {
			return nil, domain.Validation("invitee %q needs a valid email", invitee.Name)
		}
	}

	var (
		group    *models.Group
		invitees []*models.Invitee
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group = &models.Group{
			Name:            strings.TrimSpace(in.Name),
			Address:         strings.TrimSpace(in.Address),
			MaxParticipants: in.MaxParticipants,
			Status:          models.GroupForming,
			CardStatus:      models.CardPending,
			CreatedBy:       creatorID,
			VendorID:        in.VendorID,
		}
		if err := tx.Create(group).Error; err != nil {
			return domain.Internal(err)
		}

		slotIDs := make([]uuid.UUID, 0, len(in.Slots))
		for _, slot := range in.Slots {
			ts := &models.TimeSlot{GroupID: group.ID, StartDate: slot.StartDate, EndDate: slot.EndDate}
			if err := tx.Create(ts).Error; err != nil {
				return domain.Internal(err)
			}
			slotIDs = append(slotIDs, ts.ID)
		}

		member := &models.Member{GroupID: group.ID, UserID: creatorID, PaymentStatus: models.PaymentPending}
		if err := tx.Create(member).Error; err != nil {
			return domain.Internal(err)
		}
		for _, slotID := range slotIDs {
			sel := &models.SlotSelection{MemberID: member.ID, TimeSlotID: slotID}
			if err := tx.Create(sel).Error; err != nil {
				return domain.Internal(err)
			}
		}

		for _, inviteeIn := range in.Invitees {
			invitee, err := createInvitee(tx, group.ID, inviteeIn)
			if err != nil {
				return err
			}
			invitees = append(invitees, invitee)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.GroupsCreated.Inc()
	s.sendInvitations(ctx, group, invitees)

	return s.GetGroup(ctx, group.ID)
}

// admit performs the atomic admission check-then-insert. The caller must
// hold the group row lock.
func (s *Service) admit(tx *gorm.DB, group *models.Group, userID uuid.UUID, slotIDs []uuid.UUID) (*models.Member, error) {
	if group.Status != models.GroupForming {
		return nil, domain.Conflict("group is no longer accepting members")
	}

	var existing int64
	if err := tx.Model(&models.Member{}).
		Where("group_id = ? AND user_id = ?", group.ID, userID).
		Count(&existing).Error; err != nil {
		return nil, domain.Internal(err)
	}
	if existing > 0 {
		return nil, domain.Conflict("already a member of this group")
	}

	var count int64
	if err := tx.Model(&models.Member{}).Where("group_id = ?", group.ID).Count(&count).Error; err != nil {
		return nil, domain.Internal(err)
	}
	if count >= int64(group.MaxParticipants) {
		return nil, domain.Conflict("group is full")
	}

	groupSlots, err := groupSlotIDs(tx, group.ID)
	if err != nil {
		return nil, err
	}
	if len(groupSlots) > 0 && len(slotIDs) == 0 {
		return nil, domain.Validation("at least one time slot must be selected")
	}
	for _, id := range slotIDs {
		if _, ok := groupSlots[id]; !ok {
			return nil, domain.Validation("time slot %s does not belong to this group", id)
		}
	}

	member := &models.Member{GroupID: group.ID, UserID: userID, PaymentStatus: models.PaymentPending}
	if err := tx.Create(member).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("already a member of this group")
		}
		return nil, domain.Internal(err)
	}
	for _, slotID := range dedupe(slotIDs) {
		sel := &models.SlotSelection{MemberID: member.ID, TimeSlotID: slotID}
		if err := tx.Create(sel).Error; err != nil {
			return nil, domain.Internal(err)
		}
	}
	return member, nil
}

// JoinGroup admits an already-registered user directly, without a token.
func (s *Service) JoinGroup(ctx context.Context, userID, groupID uuid.UUID, slotIDs []uuid.UUID) (*models.Member, error) {
	var member *models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		member, err = s.admit(tx, group, userID, slotIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.MembersJoined.Inc()
	return member, nil
}

// GetGroup fetches a group with its slots.
func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Preload("TimeSlots").First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("group not found")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &group, nil
}

// ListGroups pages through all groups.
func (s *Service) ListGroups(ctx context.Context, offset, limit int) ([]models.Group, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Preload("TimeSlots").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, domain.Internal(err)
	}
	return groups, nil
}

// GroupMembers lists a group's members with their accounts.
func (s *Service) GroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.Member, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	var members []models.Member
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at").
		Find(&members).Error
	if err != nil {
		return nil, domain.Internal(err)
	}
	return members, nil
}

// DeleteGroup is the creator's escape hatch while the group is forming.
// Members, invitees, slots, and rentals cascade.
func (s *Service) DeleteGroup(ctx context.Context, requesterID, groupID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.CreatedBy != requesterID {
			return domain.Forbidden("only the group creator can delete the group")
		}
		if group.Status != models.GroupForming {
			return domain.Conflict("only forming groups can be deleted")
		}

		// The sqlite test driver does not enforce gorm's cascade DDL the way
		// postgres does, so owned rows are removed explicitly.
		memberIDs := tx.Model(&models.Member{}).Select("id").Where("group_id = ?", group.ID)
		if err := tx.Where("member_id IN (?)", memberIDs).Delete(&models.SlotSelection{}).Error; err != nil {
			return domain.Internal(err)
		}
		for _, model := range []any{
			&models.Member{}, &models.Invitee{}, &models.TimeSlot{},
			&models.Rental{}, &models.CardTransaction{},
		} {
			if err := tx.Where("group_id = ?", group.ID).Delete(model).Error; err != nil {
				return domain.Internal(err)
			}
		}
		if err := tx.Delete(&models.Group{}, "id = ?", group.ID).Error; err != nil {
			return domain.Internal(err)
		}
		return nil
	})
}

// ScheduleService is the forming -> scheduled transition. It requires a
// rental and full funding, charges every member their even share, issues
// the shared virtual card exactly once, and rolls everything back —
// including refunds of already-captured charges — if any step fails.
func (s *Service) ScheduleService(ctx context.Context, requesterID, groupID uuid.UUID) (*models.Group, error) {
	var (
		scheduled *models.Group
		captured  []payment.Charge
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.CreatedBy != requesterID {
			return domain.Forbidden("only the group creator can schedule service")
		}
		if group.Status != models.GroupForming {
			return domain.Conflict("group has already been scheduled")
		}
		if group.VirtualCardID != nil {
			return domain.Conflict("a card has already been issued for this group")
		}

		rental, err := activeRental(tx, group.ID)
		if err != nil {
			return err
		}

		var members []models.Member
		if err := tx.Preload("User").Where("group_id = ?", group.ID).Find(&members).Error; err != nil {
			return domain.Internal(err)
		}

		status := ComputeFunding(rental.TotalCost, countSetupComplete(members), len(members))
		if !status.IsFullyFunded {
			return domain.Conflict("group is not fully funded: %d of %d members ready", status.MembersPaid, status.TotalMembers)
		}

		perMemberCents := domain.Cents(status.CostPerMember)
		for i := range members {
			member := &members[i]
			charge, err := s.processor.CreateCharge(ctx, perMemberCents, member.PaymentMethodID,
				fmt.Sprintf("charge-%s-%s", group.ID, member.ID),
				map[string]string{
					"group_id": group.ID.String(),
					"user_id":  member.UserID.String(),
					"purpose":  "dumpster_rental_share",
				})
			if err != nil {
				metrics.Charges.WithLabelValues("failed").Inc()
				s.reverseCharges(ctx, captured)
				return domain.Processor(err, "charging member %s failed", member.User.Email)
			}
			metrics.Charges.WithLabelValues("succeeded").Inc()
			captured = append(captured, charge)

			if err := tx.Model(member).Update("charge_id", charge.ID).Error; err != nil {
				s.reverseCharges(ctx, captured)
				return domain.Internal(err)
			}
		}

		card, err := s.issueCard(ctx, group, domain.Cents(status.NetAmount))
		if err != nil {
			s.reverseCharges(ctx, captured)
			return err
		}

		updates := map[string]any{
			"virtual_card_id":        card.ID,
			"card_spending_limit":    domain.Cents(status.NetAmount),
			"card_status":            models.CardActive,
			"status":                 models.GroupScheduled,
			"service_fee_collected":  status.ServiceFee,
			"total_collected_amount": status.TotalCollected,
		}
		if err := tx.Model(group).Updates(updates).Error; err != nil {
			s.reverseCharges(ctx, captured)
			return domain.Internal(err)
		}
		if err := tx.Model(rental).Update("status", models.RentalConfirmed).Error; err != nil {
			s.reverseCharges(ctx, captured)
			return domain.Internal(err)
		}

		group.VirtualCardID = &card.ID
		group.Status = models.GroupScheduled
		group.CardStatus = models.CardActive
		scheduled = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CardsIssued.Inc()
	if err := s.bus.Publish(ctx, events.GroupScheduledSubject, map[string]any{
		"group_id": scheduled.ID,
		"card_id":  scheduled.VirtualCardID,
	}); err != nil {
		log.Warn().Err(err).Str("group_id", scheduled.ID.String()).Msg("publish scheduled event")
	}

	return s.GetGroup(ctx, groupID)
}

// CompleteGroup is the scheduled -> completed transition. A live card is
// expired at the processor first; if that call fails the group stays
// scheduled and the card status is untouched.
func (s *Service) CompleteGroup(ctx context.Context, requesterID, groupID uuid.UUID) (*models.Group, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.CreatedBy != requesterID {
			return domain.Forbidden("only the group creator can complete the group")
		}
		if group.Status != models.GroupScheduled {
			return domain.Conflict("only scheduled groups can be completed")
		}
		if _, err := activeRental(tx, group.ID); err != nil {
			return err
		}

		updates := map[string]any{"status": models.GroupCompleted}
		if group.VirtualCardID != nil && group.CardStatus != models.CardExpired {
			canceled := payment.ProcessorCardCanceled
			if _, err := s.processor.ModifyCard(ctx, *group.VirtualCardID, payment.CardUpdate{Status: &canceled}); err != nil {
				return domain.Processor(err, "expiring card failed")
			}
			updates["card_status"] = models.CardExpired
		}
		if err := tx.Model(group).Updates(updates).Error; err != nil {
			return domain.Internal(err)
		}
		if err := tx.Model(&models.Rental{}).
			Where("group_id = ? AND status = ?", group.ID, models.RentalConfirmed).
			Update("status", models.RentalCompleted).Error; err != nil {
			return domain.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, events.GroupCompletedSubject, map[string]any{"group_id": groupID}); err != nil {
		log.Warn().Err(err).Str("group_id", groupID.String()).Msg("publish completed event")
	}

	return s.GetGroup(ctx, groupID)
}

// reverseCharges refunds every captured charge after a partial scheduling
// failure. Refund failures are logged for manual reconciliation; by then
// the local transaction is rolling back regardless.
func (s *Service) reverseCharges(ctx context.Context, charges []payment.Charge) {
	for _, charge := range charges {
		if err := s.processor.RefundCharge(ctx, charge.ID); err != nil {
			log.Error().Err(err).Str("charge_id", charge.ID).Msg("compensating refund failed")
		}
	}
}

func countSetupComplete(members []models.Member) int {
	n := 0
	for _, m := range members {
		if m.PaymentStatus == models.PaymentSetupComplete {
			n++
		}
	}
	return n
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
