package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"groupdump/internal/domain"
	"groupdump/internal/models"
)

// CreateRentalInput books a dumpster for a group.
type CreateRentalInput struct {
	GroupID      uuid.UUID
	VendorID     uuid.UUID
	Size         string
	Duration     int
	TotalCost    float64
	DeliveryDate time.Time
}

// CreateRental records the group's funding target. The caller must be a
// member; a group carries at most one active rental at a time.
func (s *Service) CreateRental(ctx context.Context, userID uuid.UUID, in CreateRentalInput) (*models.Rental, error) {
	if in.Size == "" {
		return nil, domain.Validation("dumpster size is required")
	}
	if in.Duration <= 0 {
		return nil, domain.Validation("rental duration must be positive")
	}
	if in.TotalCost <= 0 {
		return nil, domain.Validation("total cost must be positive")
	}

	if _, err := s.memberOf(ctx, userID, in.GroupID); err != nil {
		return nil, err
	}
	if _, err := s.GetVendor(ctx, in.VendorID); err != nil {
		return nil, err
	}

	var rental *models.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := lockGroup(tx, in.GroupID)
		if err != nil {
			return err
		}
		if group.Status != models.GroupForming {
			return domain.Conflict("rentals can only be booked while the group is forming")
		}

		var active int64
		if err := tx.Model(&models.Rental{}).
			Where("group_id = ? AND status <> ?", in.GroupID, models.RentalCompleted).
			Count(&active).Error; err != nil {
			return domain.Internal(err)
		}
		if active > 0 {
			return domain.Conflict("group already has an active rental")
		}

		rental = &models.Rental{
			GroupID:      in.GroupID,
			VendorID:     in.VendorID,
			Size:         in.Size,
			Duration:     in.Duration,
			TotalCost:    in.TotalCost,
			DeliveryDate: in.DeliveryDate,
			Status:       models.RentalPending,
		}
		if err := tx.Create(rental).Error; err != nil {
			return domain.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

// ListRentals returns the rentals across every group the user belongs to.
func (s *Service) ListRentals(ctx context.Context, userID uuid.UUID) ([]models.Rental, error) {
	groupIDs := s.db.Model(&models.Member{}).Select("group_id").Where("user_id = ?", userID)

	var rentals []models.Rental
	err := s.db.WithContext(ctx).
		Preload("Vendor").
		Where("group_id IN (?)", groupIDs).
		Order("created_at DESC").
		Find(&rentals).Error
	if err != nil {
		return nil, domain.Internal(err)
	}
	return rentals, nil
}

// activeRental fetches the group's current funding record inside the
// caller's transaction.
func activeRental(tx *gorm.DB, groupID uuid.UUID) (*models.Rental, error) {
	var rental models.Rental
	err := tx.Where("group_id = ? AND status <> ?", groupID, models.RentalCompleted).
		Order("created_at DESC").
		First(&rental).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("no rental found for this group")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &rental, nil
}
