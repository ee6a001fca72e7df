package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeSlot is a candidate delivery/pickup window for a group. Slots are
// created only at group-creation time.
type TimeSlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"type:uuid;index;not null"`
	StartDate string    `gorm:"type:text;not null"`
	EndDate   string    `gorm:"type:text;not null"`

	Selections []SlotSelection `gorm:"foreignKey:TimeSlotID;constraint:OnDelete:CASCADE"`
}

func (t *TimeSlot) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SlotSelection records one member's availability for one slot. A member may
// select any number of slots; each (member, slot) pair exists at most once.
type SlotSelection struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_selections_member_slot"`
	TimeSlotID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_selections_member_slot"`
}

func (s *SlotSelection) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
