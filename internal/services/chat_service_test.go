package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu8219/AgroLabs/internal/core/chat"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

type stubDB struct {
	farms   map[string]*models.Farm
	saved   []*models.ChatMessage
	history []models.ChatMessage
	saveErr error
}

func newStubDB() *stubDB {
	return &stubDB{farms: map[string]*models.Farm{}}
}

func (s *stubDB) CreateUser(ctx context.Context, u *models.User) error { return nil }
func (s *stubDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (s *stubDB) GetFarmerProfile(ctx context.Context, userID string) (*models.FarmerProfile, error) {
	return nil, nil
}
func (s *stubDB) UpsertFarmerProfile(ctx context.Context, p *models.FarmerProfile) error {
	return nil
}
func (s *stubDB) CreateFarm(ctx context.Context, f *models.Farm) error {
	s.farms[f.ID] = f
	return nil
}
func (s *stubDB) GetFarmByID(ctx context.Context, id string) (*models.Farm, error) {
	return s.farms[id], nil
}
func (s *stubDB) ListFarmsByUser(ctx context.Context, userID string) ([]models.Farm, error) {
	return nil, nil
}
func (s *stubDB) UpdateFarm(ctx context.Context, f *models.Farm) error { return nil }
func (s *stubDB) DeleteFarm(ctx context.Context, id, userID string) error {
	return nil
}
func (s *stubDB) SaveChatMessage(ctx context.Context, m *models.ChatMessage) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, m)
	return nil
}
func (s *stubDB) ListChatMessages(ctx context.Context, userID string, farmID *string, limit int) ([]models.ChatMessage, error) {
	return s.history, nil
}
func (s *stubDB) DeleteChatMessage(ctx context.Context, id, userID string) error { return nil }
func (s *stubDB) ClearChatHistory(ctx context.Context, userID string, farmID *string) error {
	return nil
}
func (s *stubDB) CountChatMessages(ctx context.Context, userID string) (int, error) {
	return len(s.saved), nil
}
func (s *stubDB) Close() error { return nil }

type stubLLM struct {
	gotTurns [][]models.Turn
	message  string
	usage    models.Usage
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error) {
	s.gotTurns = append(s.gotTurns, turns)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Completion{Message: s.message, Usage: s.usage}, nil
}

type stubWeather struct {
	report *models.WeatherReport
	err    error
	called bool
}

func (s *stubWeather) Current(ctx context.Context, lat, lon float64) (*models.WeatherReport, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }

func TestSendPersistsBothSidesAndSplitsThinking(t *testing.T) {
	db := newStubDB()
	llm := &stubLLM{
		message: "<think>soil is dry</think>Irrigate tonight.",
		usage:   models.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	svc := NewChatService(db, llm, &stubWeather{}, testLogger())

	reply, usage, err := svc.Send(context.Background(), "user-1", nil, "Should I irrigate?")
	require.NoError(t, err)

	assert.Equal(t, "Irrigate tonight.", reply.Content)
	require.NotNil(t, reply.Thinking)
	assert.Equal(t, "soil is dry", *reply.Thinking)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, 15, usage.TotalTokens)

	require.Len(t, db.saved, 2)
	assert.Equal(t, models.RoleUser, db.saved[0].Role)
	assert.Equal(t, "Should I irrigate?", db.saved[0].Content)
	assert.Equal(t, models.RoleAssistant, db.saved[1].Role)
}

func TestSendWithFarmPrependsWeatherContext(t *testing.T) {
	db := newStubDB()
	farmID := "farm-1"
	db.farms[farmID] = &models.Farm{
		ID:       farmID,
		UserID:   "user-1",
		Location: models.Location{Lat: 48.1, Lng: 11.5},
	}
	w := &stubWeather{report: &models.WeatherReport{
		Data: models.WeatherSnapshot{Temperature: f(21.3)},
	}}
	llm := &stubLLM{message: "ok"}
	svc := NewChatService(db, llm, w, testLogger())

	_, _, err := svc.Send(context.Background(), "user-1", &farmID, "hello")
	require.NoError(t, err)

	require.Len(t, llm.gotTurns, 1)
	turns := llm.gotTurns[0]
	require.NotEmpty(t, turns)
	assert.Equal(t, models.RoleSystem, turns[0].Role)
	assert.Contains(t, turns[0].Content, "Current farm weather conditions:")
	assert.Contains(t, turns[0].Content, "21.3°C")
	assert.Equal(t, models.RoleUser, turns[len(turns)-1].Role)
	assert.Equal(t, "hello", turns[len(turns)-1].Content)
	assert.True(t, w.called)
}

func TestSendWeatherFailureDegradesToUnavailable(t *testing.T) {
	db := newStubDB()
	farmID := "farm-1"
	db.farms[farmID] = &models.Farm{ID: farmID, UserID: "user-1"}
	llm := &stubLLM{message: "ok"}
	svc := NewChatService(db, llm, &stubWeather{err: errors.New("boom")}, testLogger())

	_, _, err := svc.Send(context.Background(), "user-1", &farmID, "hello")
	require.NoError(t, err)

	turns := llm.gotTurns[0]
	assert.Equal(t, models.RoleSystem, turns[0].Role)
	assert.Contains(t, turns[0].Content, "Weather data is currently unavailable")
}

func TestSendIncludesPriorHistory(t *testing.T) {
	db := newStubDB()
	db.history = []models.ChatMessage{
		{ID: "m1", Role: models.RoleUser, Content: "earlier question"},
		{ID: "m2", Role: models.RoleAssistant, Content: "earlier answer"},
	}
	llm := &stubLLM{message: "ok"}
	svc := NewChatService(db, llm, &stubWeather{}, testLogger())

	_, _, err := svc.Send(context.Background(), "user-1", nil, "follow-up")
	require.NoError(t, err)

	turns := llm.gotTurns[0]
	require.Len(t, turns, 3)
	assert.Equal(t, "earlier question", turns[0].Content)
	assert.Equal(t, "earlier answer", turns[1].Content)
	assert.Equal(t, "follow-up", turns[2].Content)
}

func TestSendPersistFailureDoesNotBlockTurn(t *testing.T) {
	db := newStubDB()
	db.saveErr = errors.New("db down")
	llm := &stubLLM{message: "still answering"}
	svc := NewChatService(db, llm, &stubWeather{}, testLogger())

	reply, _, err := svc.Send(context.Background(), "user-1", nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "still answering", reply.Content)
}

func TestSendProviderFailureAbortsTurn(t *testing.T) {
	db := newStubDB()
	llm := &stubLLM{err: errors.New("upstream down")}
	svc := NewChatService(db, llm, &stubWeather{}, testLogger())

	_, _, err := svc.Send(context.Background(), "user-1", nil, "hello")
	require.Error(t, err)

	// Only the user message was persisted.
	require.Len(t, db.saved, 1)
	assert.Equal(t, models.RoleUser, db.saved[0].Role)
}

func TestAdviseStripsThinkingAndChecksOwnership(t *testing.T) {
	db := newStubDB()
	farmID := "farm-1"
	db.farms[farmID] = &models.Farm{ID: farmID, UserID: "owner"}
	llm := &stubLLM{message: "<think>x</think>**Sorghum**"}
	svc := NewChatService(db, llm, &stubWeather{}, testLogger())

	markdown, _, err := svc.Advise(context.Background(), "owner", &farmID, chat.CropAdvisoryConversation)
	require.NoError(t, err)
	assert.Equal(t, "**Sorghum**", markdown)

	_, _, err = svc.Advise(context.Background(), "intruder", &farmID, chat.CropAdvisoryConversation)
	assert.ErrorIs(t, err, ErrFarmNotFound)
}
