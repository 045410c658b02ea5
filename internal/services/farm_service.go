package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

// ErrFarmNotFound is returned when a farm does not exist or is owned by
// another user. Callers map it to 404.
var ErrFarmNotFound = errors.New("farm not found")

type FarmService struct {
	db core.DbClient
}

func NewFarmService(db core.DbClient) *FarmService {
	return &FarmService{db: db}
}

func (s *FarmService) Create(ctx context.Context, userID string, farm *models.Farm) (*models.Farm, error) {
	if farm == nil || farm.Name == "" {
		return nil, errors.New("farm name is required")
	}
	farm.ID = uuid.NewString()
	farm.UserID = userID
	if err := s.db.CreateFarm(ctx, farm); err != nil {
		return nil, err
	}
	return s.db.GetFarmByID(ctx, farm.ID)
}

func (s *FarmService) List(ctx context.Context, userID string) ([]models.Farm, error) {
	return s.db.ListFarmsByUser(ctx, userID)
}

// Get loads a farm and enforces ownership.
func (s *FarmService) Get(ctx context.Context, id, userID string) (*models.Farm, error) {
	farm, err := s.db.GetFarmByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if farm == nil || farm.UserID != userID {
		return nil, ErrFarmNotFound
	}
	return farm, nil
}

func (s *FarmService) Update(ctx context.Context, userID string, farm *models.Farm) (*models.Farm, error) {
	if farm == nil || farm.ID == "" {
		return nil, errors.New("farm id is required")
	}
	if _, err := s.Get(ctx, farm.ID, userID); err != nil {
		return nil, err
	}
	farm.UserID = userID
	if err := s.db.UpdateFarm(ctx, farm); err != nil {
		return nil, err
	}
	return s.db.GetFarmByID(ctx, farm.ID)
}

func (s *FarmService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.db.DeleteFarm(ctx, id, userID)
}
