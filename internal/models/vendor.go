package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vendor is a dumpster rental company groups can book through.
type Vendor struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name           string         `gorm:"type:text;not null"`
	Email          string         `gorm:"type:text;not null"`
	Phone          string         `gorm:"type:text"`
	Address        string         `gorm:"type:text"`
	ServiceAreas   string         `gorm:"type:text"`
	PricingTiers   datatypes.JSON `gorm:"type:jsonb"`
	CommissionRate float64        `gorm:"not null;default:0.08"`
	Rating         float64        `gorm:"not null;default:0"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`

	Rentals []Rental `gorm:"foreignKey:VendorID"`
}

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
