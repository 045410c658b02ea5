package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/core/chat"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

// historyLimit caps how many prior messages feed one completion call.
const historyLimit = 50

// ChatService runs one advisory chat turn end to end: persist the user
// message, assemble the prompt with live weather context, call the completion
// provider, split out the reasoning segment, persist the assistant reply.
// Persistence failures are logged and never block the turn; only a provider
// failure aborts it.
type ChatService struct {
	db      core.DbClient
	llm     core.CompletionProvider
	weather core.WeatherProvider
	logger  *slog.Logger
}

func NewChatService(db core.DbClient, llm core.CompletionProvider, weather core.WeatherProvider, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{db: db, llm: llm, weather: weather, logger: logger}
}

// Send executes one chat turn for the user. farmID nil means the general
// conversation bucket with no weather context.
func (s *ChatService) Send(ctx context.Context, userID string, farmID *string, content string) (*models.ChatMessage, models.Usage, error) {
	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		FarmID:    farmID,
		Role:      models.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.db.SaveChatMessage(ctx, userMsg); err != nil {
		s.logger.Warn("failed to persist user message", "user_id", userID, "error", err)
	}

	prior, err := s.db.ListChatMessages(ctx, userID, farmID, historyLimit)
	if err != nil {
		s.logger.Warn("failed to load chat history", "user_id", userID, "error", err)
		prior = nil
	}

	contextBlock := s.weatherContext(ctx, userID, farmID)

	turns := chat.BuildConversation(priorTurns(prior, userMsg.ID), models.Turn{
		Role:    models.RoleUser,
		Content: content,
	}, contextBlock)

	completion, err := s.llm.Complete(ctx, turns)
	if err != nil {
		return nil, models.Usage{}, err
	}

	thinking, response := chat.ExtractThinking(completion.Message)
	assistant := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		FarmID:    farmID,
		Role:      models.RoleAssistant,
		Content:   response,
		CreatedAt: time.Now(),
	}
	if thinking != "" {
		assistant.Thinking = &thinking
	}
	if err := s.db.SaveChatMessage(ctx, assistant); err != nil {
		s.logger.Warn("failed to persist assistant message", "user_id", userID, "error", err)
	}

	return assistant, completion.Usage, nil
}

// weatherContext fetches the snapshot for the farm's coordinates. Any failure
// degrades to the fixed unavailable instruction; a chat turn never fails on
// weather.
func (s *ChatService) weatherContext(ctx context.Context, userID string, farmID *string) string {
	if farmID == nil {
		return ""
	}
	farm, err := s.db.GetFarmByID(ctx, *farmID)
	if err != nil || farm == nil || farm.UserID != userID {
		if err != nil {
			s.logger.Warn("failed to load farm for chat context", "farm_id", *farmID, "error", err)
		}
		return chat.WeatherContext(nil, nil)
	}
	report, err := s.weather.Current(ctx, farm.Location.Lat, farm.Location.Lng)
	if err != nil {
		s.logger.Warn("weather fetch failed for chat context", "farm_id", *farmID, "error", err)
		return chat.WeatherContext(nil, nil)
	}
	return chat.WeatherContext(&report.Data, &farm.Location)
}

// priorTurns maps stored history to conversation turns, excluding the message
// just saved for this turn.
func priorTurns(msgs []models.ChatMessage, excludeID string) []models.Turn {
	var out []models.Turn
	for _, m := range msgs {
		if m.ID == excludeID {
			continue
		}
		out = append(out, models.Turn{Role: m.Role, Content: m.Content})
	}
	return out
}

// History lists a user's messages oldest first, nil farmID selecting the
// general bucket.
func (s *ChatService) History(ctx context.Context, userID string, farmID *string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	return s.db.ListChatMessages(ctx, userID, farmID, limit)
}

// Clear deletes a user's messages, optionally scoped to one farm bucket.
func (s *ChatService) Clear(ctx context.Context, userID string, farmID *string) error {
	return s.db.ClearChatHistory(ctx, userID, farmID)
}

// Count reports the user's total persisted messages across all buckets.
func (s *ChatService) Count(ctx context.Context, userID string) (int, error) {
	return s.db.CountChatMessages(ctx, userID)
}

// DeleteMessage removes one message owned by the user.
func (s *ChatService) DeleteMessage(ctx context.Context, id, userID string) error {
	return s.db.DeleteChatMessage(ctx, id, userID)
}

// Advise runs a single-shot advisory flow (crop or pesticide) for a farm.
// The conversation builder receives the latest snapshot, or nil when weather
// could not be fetched.
func (s *ChatService) Advise(ctx context.Context, userID string, farmID *string, build func(*models.WeatherSnapshot, *models.Location) []models.Turn) (string, models.Usage, error) {
	var snapshot *models.WeatherSnapshot
	var loc *models.Location
	if farmID != nil {
		farm, err := s.db.GetFarmByID(ctx, *farmID)
		if err != nil {
			return "", models.Usage{}, fmt.Errorf("load farm: %w", err)
		}
		if farm == nil || farm.UserID != userID {
			return "", models.Usage{}, ErrFarmNotFound
		}
		loc = &farm.Location
		if report, err := s.weather.Current(ctx, farm.Location.Lat, farm.Location.Lng); err == nil {
			snapshot = &report.Data
		} else {
			s.logger.Warn("weather fetch failed for advisory", "farm_id", *farmID, "error", err)
		}
	}

	completion, err := s.llm.Complete(ctx, build(snapshot, loc))
	if err != nil {
		return "", models.Usage{}, err
	}
	return chat.StripThinking(completion.Message), completion.Usage, nil
}
