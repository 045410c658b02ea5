package core

import (
	"context"

	"github.com/krishanu8219/AgroLabs/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	GetFarmerProfile(ctx context.Context, userID string) (*models.FarmerProfile, error)
	UpsertFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error

	CreateFarm(ctx context.Context, farm *models.Farm) error
	GetFarmByID(ctx context.Context, id string) (*models.Farm, error)
	ListFarmsByUser(ctx context.Context, userID string) ([]models.Farm, error)
	UpdateFarm(ctx context.Context, farm *models.Farm) error
	DeleteFarm(ctx context.Context, id, userID string) error

	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, userID string, farmID *string, limit int) ([]models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id, userID string) error
	ClearChatHistory(ctx context.Context, userID string, farmID *string) error
	CountChatMessages(ctx context.Context, userID string) (int, error)

	Close() error
}

// CompletionProvider is the single external call boundary to the
// language-model provider. Implementations prepend the fixed advisory persona
// ahead of caller-supplied turns and select the model; one synchronous call,
// no retries, no streaming.
type CompletionProvider interface {
	Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error)
}

// WeatherProvider fetches the snapshot for the current UTC hour at the given
// coordinates.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*models.WeatherReport, error)
}
