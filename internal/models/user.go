package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Auth itself lives at the boundary; the core
// only needs identity and the email used to gate invite redemption.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	Name         string    `gorm:"type:text;not null"`
	Phone        string    `gorm:"type:text"`
	Address      string    `gorm:"type:text"`
	PasswordHash string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Memberships []Member `gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
