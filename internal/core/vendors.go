package core

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"groupdump/internal/domain"
	"groupdump/internal/models"
)

// CreateVendorInput registers a dumpster rental company.
type CreateVendorInput struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	ServiceAreas string
	PricingTiers []byte
}

// CreateVendor adds a vendor to the directory.
func (s *Service) CreateVendor(ctx context.Context, in CreateVendorInput) (*models.Vendor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("vendor name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, domain.Validation("a valid vendor email is required")
	}

	vendor := &models.Vendor{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		ServiceAreas: in.ServiceAreas,
		PricingTiers: datatypes.JSON(in.PricingTiers),
	}
	if err := s.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return nil, domain.Internal(err)
	}
	return vendor, nil
}

// ListVendors pages through the vendor directory.
func (s *Service) ListVendors(ctx context.Context, offset, limit int) ([]models.Vendor, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var vendors []models.Vendor
	err := s.db.WithContext(ctx).Order("name").Offset(offset).Limit(limit).Find(&vendors).Error
	if err != nil {
		return nil, domain.Internal(err)
	}
	return vendors, nil
}

// GetVendor fetches one vendor.
func (s *Service) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.WithContext(ctx).First(&vendor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("vendor not found")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &vendor, nil
}
