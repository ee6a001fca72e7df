package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitee is a prospective member identified by email, holding an unredeemed
// join token. Redemption deletes the row in the same transaction that
// creates the Member, so a token can never be consumed twice.
type Invitee struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name    string    `gorm:"type:text;not null"`
	Email   string    `gorm:"type:text;not null"`
	Phone   string    `gorm:"type:text"`

	JoinToken      string `gorm:"type:text;uniqueIndex;not null"`
	InvitationSent bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (i *Invitee) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
