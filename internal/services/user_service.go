package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

type UserService struct {
	db core.DbClient
}

func NewUserService(db core.DbClient) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, u *models.User) error {
	if u == nil || u.Email == "" || u.PasswordHash == "" {
		return errors.New("invalid user payload")
	}
	return s.db.CreateUser(ctx, u)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.db.GetUserByEmail(ctx, email)
}

// Profile returns the farmer profile for a user, or nil when none exists yet.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.FarmerProfile, error) {
	return s.db.GetFarmerProfile(ctx, userID)
}

// SaveProfile creates or replaces the user's farmer profile.
func (s *UserService) SaveProfile(ctx context.Context, userID string, p *models.FarmerProfile) (*models.FarmerProfile, error) {
	if p == nil {
		return nil, errors.New("invalid profile payload")
	}
	existing, err := s.db.GetFarmerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		p.ID = existing.ID
	} else {
		p.ID = uuid.NewString()
	}
	p.UserID = userID
	if err := s.db.UpsertFarmerProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.db.GetFarmerProfile(ctx, userID)
}
