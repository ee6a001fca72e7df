package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"groupdump/internal/domain"
	"groupdump/internal/events"
	"groupdump/internal/models"
	"groupdump/internal/payment"
)

// allowedCategories restricts the shared card to dumpster-rental spend.
var allowedCategories = []string{"rental_and_leasing_services"}

// CardDetails merges the locally tracked instrument state with what the
// processor reports.
type CardDetails struct {
	CardID           string
	Status           string
	Brand            string
	Last4            string
	ExpMonth         int
	ExpYear          int
	SpendingLimit    int64
	RemainingBalance int64
}

// issueCard creates the shared virtual card at the processor. The caller
// holds the group row lock and has already verified no card exists, which
// is what makes issuance at-most-once.
func (s *Service) issueCard(ctx context.Context, group *models.Group, limitCents int64) (payment.Card, error) {
	card, err := s.processor.CreateCard(ctx, s.cardholderID, limitCents, allowedCategories, map[string]string{
		"group_id": group.ID.String(),
		"purpose":  "shared_dumpster_rental",
	})
	if err != nil {
		return payment.Card{}, domain.Processor(err, "issuing virtual card failed")
	}
	return card, nil
}

// FreezeCard suspends the group's card. Creator only; the processor call
// happens first and local state is only flipped on its success.
func (s *Service) FreezeCard(ctx context.Context, requesterID, groupID uuid.UUID) error {
	return s.setCardStatus(ctx, requesterID, groupID, models.CardActive, models.CardFrozen, payment.ProcessorCardInactive)
}

// UnfreezeCard reactivates a frozen card.
func (s *Service) UnfreezeCard(ctx context.Context, requesterID, groupID uuid.UUID) error {
	return s.setCardStatus(ctx, requesterID, groupID, models.CardFrozen, models.CardActive, payment.ProcessorCardActive)
}

func (s *Service) setCardStatus(ctx context.Context, requesterID, groupID uuid.UUID, from, to, processorStatus string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, groupID)
		if err != nil {
			return err
		}
		if group.CreatedBy != requesterID {
			return domain.Forbidden("only the group creator can manage the card")
		}
		if group.VirtualCardID == nil {
			return domain.NotFound("no card has been issued for this group")
		}
		if group.CardStatus != from {
			return domain.Conflict("card is %s, expected %s", group.CardStatus, from)
		}

		if _, err := s.processor.ModifyCard(ctx, *group.VirtualCardID, payment.CardUpdate{Status: &processorStatus}); err != nil {
			return domain.Processor(err, "updating card status failed")
		}

		if err := tx.Model(group).Update("card_status", to).Error; err != nil {
			return domain.Internal(err)
		}
		return nil
	})
}

// Card returns the merged card view for a member of the group.
func (s *Service) Card(ctx context.Context, userID, groupID uuid.UUID) (*CardDetails, error) {
	if _, err := s.memberOf(ctx, userID, groupID); err != nil {
		return nil, err
	}

	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.VirtualCardID == nil {
		return nil, domain.NotFound("no card has been issued for this group")
	}

	remaining, err := s.remainingBalance(ctx, group)
	if err != nil {
		return nil, err
	}

	details := &CardDetails{
		CardID:           *group.VirtualCardID,
		Status:           group.CardStatus,
		SpendingLimit:    group.CardSpendingLimit,
		RemainingBalance: remaining,
	}

	processorCard, err := s.processor.RetrieveCard(ctx, *group.VirtualCardID)
	if err != nil {
		// Local state is authoritative for status; processor enrichment is
		// best effort.
		log.Warn().Err(err).Str("group_id", groupID.String()).Msg("retrieve card from processor")
		return details, nil
	}
	details.Brand = processorCard.Brand
	details.Last4 = processorCard.Last4
	details.ExpMonth = processorCard.ExpMonth
	details.ExpYear = processorCard.ExpYear
	return details, nil
}

// RecordTransaction appends a spend event reported by the processor webhook
// to the group's audit trail. The card id resolves the group; an unknown
// card is NotFound.
func (s *Service) RecordTransaction(ctx context.Context, cardID string, amountCents int64, merchant, status, authCode string, raw []byte) (*models.CardTransaction, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Where("virtual_card_id = ?", cardID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("no group holds card %s", cardID)
	}
	if err != nil {
		return nil, domain.Internal(err)
	}

	txn := &models.CardTransaction{
		GroupID:           group.ID,
		CardID:            cardID,
		Amount:            amountCents,
		MerchantName:      merchant,
		Status:            status,
		AuthorizationCode: authCode,
		Raw:               datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, domain.Internal(err)
	}

	if err := s.bus.Publish(ctx, events.CardTransactionSubject, map[string]any{
		"group_id":     group.ID,
		"card_id":      cardID,
		"amount_cents": amountCents,
		"merchant":     merchant,
		"status":       status,
	}); err != nil {
		log.Warn().Err(err).Str("card_id", cardID).Msg("publish transaction event")
	}
	return txn, nil
}

// Transactions lists the group's card spend history, newest first.
func (s *Service) Transactions(ctx context.Context, userID, groupID uuid.UUID) ([]models.CardTransaction, error) {
	if _, err := s.memberOf(ctx, userID, groupID); err != nil {
		return nil, err
	}
	var txns []models.CardTransaction
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, domain.Internal(err)
	}
	return txns, nil
}

// remainingBalance is spendingLimit minus the sum of approved transaction
// amounts. The append-only transaction log is the sole source of truth.
func (s *Service) remainingBalance(ctx context.Context, group *models.Group) (int64, error) {
	var spent int64
	err := s.db.WithContext(ctx).
		Model(&models.CardTransaction{}).
		Where("group_id = ? AND status = ?", group.ID, models.TransactionApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&spent).Error
	if err != nil {
		return 0, domain.Internal(err)
	}
	return group.CardSpendingLimit - spent, nil
}
