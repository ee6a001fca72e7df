package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Card transaction statuses as reported by the processor.
const (
	TransactionApproved = "approved"
	TransactionDeclined = "declined"
)

// CardTransaction is one spend event against a group's shared instrument.
// The table is append-only; rows are never mutated retroactively and are the
// sole source of truth for the card's remaining balance.
type CardTransaction struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID           uuid.UUID `gorm:"type:uuid;index;not null"`
	CardID            string    `gorm:"type:text;index;not null"`
	Amount            int64     `gorm:"not null"`
	MerchantName      string    `gorm:"type:text"`
	Status            string    `gorm:"type:text;not null"`
	AuthorizationCode string    `gorm:"type:text"`
	Raw               datatypes.JSON
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (t *CardTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
