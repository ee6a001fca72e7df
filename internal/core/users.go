package core

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"groupdump/internal/auth"
	"groupdump/internal/domain"
	"groupdump/internal/models"
)

// RegisterUserInput is the account-creation request.
type RegisterUserInput struct {
	Email    string
	Name     string
	Phone    string
	Address  string
	Password string
}

// RegisterUser creates an account with a hashed password.
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Validation("a valid email is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("name is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("email already registered")
		}
		return nil, domain.Internal(err)
	}
	return user, nil
}

// AuthenticateUser verifies credentials and returns the account.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Forbidden("incorrect email or password")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, domain.Forbidden("incorrect email or password")
	}
	return &user, nil
}

// GetUser fetches an account by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &user, nil
}
