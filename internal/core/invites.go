package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"groupdump/internal/domain"
	"groupdump/internal/metrics"
	"groupdump/internal/models"
)

// tokenBytes gives 256 bits of entropy per join token, comfortably above
// the 128-bit floor for collision resistance.
const tokenBytes = 32

// mintRetries bounds the re-roll loop on the astronomically rare token
// collision.
const mintRetries = 3

func mintToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// createInvitee mints a single-use token and persists the invitee inside the
// caller's transaction, re-rolling on a unique-constraint collision instead
// of failing the request.
func createInvitee(tx *gorm.DB, groupID uuid.UUID, in InviteeInput) (*models.Invitee, error) {
	for attempt := 0; attempt < mintRetries; attempt++ {
		token, err := mintToken()
		if err != nil {
			return nil, domain.Internal(err)
		}

		invitee := &models.Invitee{
			GroupID:   groupID,
			Name:      in.Name,
			Email:     in.Email,
			Phone:     in.Phone,
			JoinToken: token,
		}
		err = tx.Create(invitee).Error
		if err == nil {
			return invitee, nil
		}
		if !isUniqueViolation(err) {
			return nil, domain.Internal(err)
		}
	}
	return nil, domain.Internal(errors.New("token collision persisted across retries"))
}

// RedeemInvite converts an invitee into a member, burning the token in the
// same transaction. Under concurrent redemption of the same token exactly
// one caller wins; the loser sees a conflict. The redeeming user's email
// must match the invitee's.
func (s *Service) RedeemInvite(ctx context.Context, userID uuid.UUID, token string, slotIDs []uuid.UUID) (*models.Member, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var member *models.Member
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitee models.Invitee
		if err := tx.Where("join_token = ?", token).First(&invitee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("invalid invitation token")
			}
			return domain.Internal(err)
		}

		if invitee.Email != user.Email {
			return domain.Forbidden("invitation was issued to a different email address")
		}

		// Atomic burn: the row delete decides the winner between concurrent
		// redemptions. Zero rows affected means someone else consumed it
		// after our lookup.
		res := tx.Where("id = ?", invitee.ID).Delete(&models.Invitee{})
		if res.Error != nil {
			return domain.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.Conflict("invitation token already used")
		}

		group, err := lockGroup(tx, invitee.GroupID)
		if err != nil {
			return err
		}

		member, err = s.admit(tx, group, userID, slotIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitesRedeemed.Inc()
	metrics.MembersJoined.Inc()
	return member, nil
}

// sendInvitations emails each invitee their join link and records the
// outcome. Failures are logged and never propagate: notification is
// fire-and-forget relative to state transitions.
func (s *Service) sendInvitations(ctx context.Context, group *models.Group, invitees []*models.Invitee) {
	for _, invitee := range invitees {
		subject := fmt.Sprintf("You're invited to share a dumpster with %q", group.Name)
		body := fmt.Sprintf(
			"<p>Hi %s,</p><p>You've been invited to join the group <b>%s</b> at %s.</p>"+
				"<p><a href=%q>Accept your invitation</a></p>",
			invitee.Name, group.Name, group.Address,
			fmt.Sprintf("%s/%s", s.inviteBaseURL, invitee.JoinToken),
		)

		if err := s.notifier.Send(ctx, invitee.Email, subject, body); err != nil {
			log.Warn().Err(err).
				Str("group_id", group.ID.String()).
				Str("email", invitee.Email).
				Msg("invitation email failed")
			continue
		}

		if err := s.db.WithContext(ctx).
			Model(&models.Invitee{}).
			Where("id = ?", invitee.ID).
			Update("invitation_sent", true).Error; err != nil {
			log.Warn().Err(err).Str("invitee_id", invitee.ID.String()).Msg("mark invitation sent")
		}
	}
}

// GroupInvitees lists a group's outstanding invitations. Creator only:
// tokens are secrets.
func (s *Service) GroupInvitees(ctx context.Context, requesterID, groupID uuid.UUID) ([]models.Invitee, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != requesterID {
		return nil, domain.Forbidden("only the group creator can view invitations")
	}

	var invitees []models.Invitee
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Order("created_at").Find(&invitees).Error; err != nil {
		return nil, domain.Internal(err)
	}
	return invitees, nil
}
