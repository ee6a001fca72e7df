package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Per-member payment readiness states. The machine only moves forward:
// pending -> setup_required -> setup_complete.
const (
	PaymentPending       = "pending"
	PaymentSetupRequired = "setup_required"
	PaymentSetupComplete = "setup_complete"
)

// Member is a (group, user) pair. The pair is unique and the member count
// per group never exceeds the group's MaxParticipants.
type Member struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_group_user"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_group_user"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	PaymentStatus   string `gorm:"type:text;not null;default:pending"`
	SetupIntentID   string `gorm:"type:text"`
	PaymentMethodID string `gorm:"type:text"`
	ChargeID        string `gorm:"type:text"`

	// ContributionAmount mirrors a column the original schema carries but no
	// computed flow reads; splits are always even.
	ContributionAmount float64

	User       User            `gorm:"foreignKey:UserID"`
	Selections []SlotSelection `gorm:"constraint:OnDelete:CASCADE"`
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
