package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rental statuses.
const (
	RentalPending   = "pending"
	RentalConfirmed = "confirmed"
	RentalCompleted = "completed"
)

// Rental is the funding record tying a group to a vendor's dumpster
// offering: size, duration, cost, delivery date. One active rental per
// group at a time.
type Rental struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID      uuid.UUID `gorm:"type:uuid;index;not null"`
	VendorID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Size         string    `gorm:"type:text;not null"`
	Duration     int       `gorm:"not null"`
	TotalCost    float64   `gorm:"not null"`
	DeliveryDate time.Time
	Status       string    `gorm:"type:text;not null;default:pending"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Vendor Vendor `gorm:"foreignKey:VendorID"`
}

func (r *Rental) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
