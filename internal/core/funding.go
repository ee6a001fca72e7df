package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"groupdump/internal/domain"
	"groupdump/internal/models"
	"groupdump/internal/payment"
)

// FundingStatus is the aggregate funding picture for a group. Everything is
// recomputed per call — nothing is cached — so it stays correct as
// membership changes before scheduling.
type FundingStatus struct {
	TotalCost      float64
	CostPerMember  float64
	TotalCollected float64
	ServiceFee     float64
	NetAmount      float64
	MembersPaid    int
	TotalMembers   int
	IsFullyFunded  bool
}

// ComputeFunding derives the funding status from the rental cost and member
// readiness counts. Contributions are always split evenly among current
// members.
func ComputeFunding(totalCost float64, membersPaid, totalMembers int) FundingStatus {
	status := FundingStatus{
		TotalCost:    totalCost,
		MembersPaid:  membersPaid,
		TotalMembers: totalMembers,
	}
	if totalMembers > 0 {
		status.CostPerMember = totalCost / float64(totalMembers)
		status.TotalCollected = status.CostPerMember * float64(membersPaid)
		status.IsFullyFunded = membersPaid == totalMembers
	}
	status.ServiceFee = totalCost * domain.ServiceFeeRate
	status.NetAmount = totalCost - status.ServiceFee
	return status
}

// Funding reports the group's current funding status against its active
// rental.
func (s *Service) Funding(ctx context.Context, groupID uuid.UUID) (FundingStatus, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return FundingStatus{}, err
	}

	var rental models.Rental
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		First(&rental).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FundingStatus{}, domain.NotFound("no rental found for this group")
	}
	if err != nil {
		return FundingStatus{}, domain.Internal(err)
	}

	var members []models.Member
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		return FundingStatus{}, domain.Internal(err)
	}

	return ComputeFunding(rental.TotalCost, countSetupComplete(members), len(members)), nil
}

// BeginPaymentSetup starts payment-method verification for the calling
// member: it creates a setup intent at the processor and moves the member
// to setup_required. The returned client secret drives the member-facing
// confirmation flow.
func (s *Service) BeginPaymentSetup(ctx context.Context, userID, groupID uuid.UUID) (payment.SetupIntent, error) {
	member, err := s.memberOf(ctx, userID, groupID)
	if err != nil {
		return payment.SetupIntent{}, err
	}
	if member.PaymentStatus == models.PaymentSetupComplete {
		return payment.SetupIntent{}, domain.Conflict("payment method already verified")
	}

	intent, err := s.processor.CreateSetupIntent(ctx, map[string]string{
		"group_id": groupID.String(),
		"user_id":  userID.String(),
	})
	if err != nil {
		return payment.SetupIntent{}, domain.Processor(err, "creating setup intent failed")
	}

	err = s.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", member.ID).
		Updates(map[string]any{
			"setup_intent_id": intent.ID,
			"payment_status":  models.PaymentSetupRequired,
		}).Error
	if err != nil {
		return payment.SetupIntent{}, domain.Internal(err)
	}
	return intent, nil
}

// ConfirmPaymentSetup checks the setup intent with the processor and, if it
// succeeded, advances the member to setup_complete. The state machine never
// moves backward: an unconfirmed intent leaves the member setup_required.
func (s *Service) ConfirmPaymentSetup(ctx context.Context, userID, groupID uuid.UUID) (*models.Member, error) {
	member, err := s.memberOf(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if member.PaymentStatus == models.PaymentSetupComplete {
		return member, nil
	}
	if member.SetupIntentID == "" {
		return nil, domain.Conflict("payment setup has not been started")
	}

	intent, err := s.processor.RetrieveSetupIntent(ctx, member.SetupIntentID)
	if err != nil {
		return nil, domain.Processor(err, "retrieving setup intent failed")
	}
	if intent.Status != payment.SetupSucceeded {
		return nil, domain.Conflict("payment setup is not complete yet (status %s)", intent.Status)
	}

	err = s.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", member.ID).
		Updates(map[string]any{
			"payment_status":    models.PaymentSetupComplete,
			"payment_method_id": intent.PaymentMethod,
		}).Error
	if err != nil {
		return nil, domain.Internal(err)
	}

	member.PaymentStatus = models.PaymentSetupComplete
	member.PaymentMethodID = intent.PaymentMethod
	return member, nil
}

func (s *Service) memberOf(ctx context.Context, userID, groupID uuid.UUID) (*models.Member, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	var member models.Member
	err := s.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Forbidden("not a member of this group")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &member, nil
}
