package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group statuses. Status only advances forward.
const (
	GroupForming   = "forming"
	GroupScheduled = "scheduled"
	GroupCompleted = "completed"
)

// Card statuses for the shared instrument attached to a group.
// pending -> active <-> frozen, expired reachable from any non-terminal state.
const (
	CardPending = "pending"
	CardActive  = "active"
	CardFrozen  = "frozen"
	CardExpired = "expired"
)

// Group is the bounded set of participants sharing one rental and one
// funding pool. It exclusively owns its members, invitees, slots, rentals,
// and card transactions; deleting a group cascades to all of them.
type Group struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name            string     `gorm:"type:text;not null"`
	Address         string     `gorm:"type:text;not null"`
	MaxParticipants int        `gorm:"not null;default:5"`
	Status          string     `gorm:"type:text;not null;default:forming"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;index;not null"`
	VendorID        *uuid.UUID `gorm:"type:uuid;index"`

	// VirtualCardID is set at most once across the group's lifetime.
	VirtualCardID     *string `gorm:"type:text;uniqueIndex"`
	CardSpendingLimit int64
	CardStatus        string `gorm:"type:text;not null;default:pending"`

	ServiceFeeCollected  float64
	TotalCollectedAmount float64

	CreatedAt time.Time `gorm:"autoCreateTime"`

	Members      []Member          `gorm:"constraint:OnDelete:CASCADE"`
	Invitees     []Invitee         `gorm:"constraint:OnDelete:CASCADE"`
	TimeSlots    []TimeSlot        `gorm:"constraint:OnDelete:CASCADE"`
	Rentals      []Rental          `gorm:"constraint:OnDelete:CASCADE"`
	Transactions []CardTransaction `gorm:"constraint:OnDelete:CASCADE"`
}

func (g *Group) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
