package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	middleware "github.com/krishanu8219/AgroLabs/internal/api/middlewares"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

const testSecret = "test-secret"
const testUserID = "11111111-1111-1111-1111-111111111111"

// serveAuthed runs the handler behind the JWT middleware with a valid token.
func serveAuthed(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer "+generateJWT(testUserID, testSecret))
	rr := httptest.NewRecorder()
	middleware.JWTMiddleware(testSecret)(h).ServeHTTP(rr, req)
	return rr
}

type fakeProvider struct {
	gotTurns []models.Turn
	result   *models.Completion
	err      error
}

func (p *fakeProvider) Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error) {
	p.gotTurns = turns
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fakeWeather struct {
	report *models.WeatherReport
	err    error
	called bool
}

func (p *fakeWeather) Current(ctx context.Context, lat, lon float64) (*models.WeatherReport, error) {
	p.called = true
	if p.err != nil {
		return nil, p.err
	}
	return p.report, nil
}

// memDB is an in-memory DbClient covering what the handler tests touch.
type memDB struct {
	users     map[string]*models.User
	history   []models.ChatMessage
	histFarm  *string
	histLimit int
	total     int
}

func newMemDB() *memDB {
	return &memDB{users: map[string]*models.User{}}
}

func (m *memDB) CreateUser(ctx context.Context, u *models.User) error {
	if _, ok := m.users[u.Email]; ok {
		return errors.New("duplicate email")
	}
	m.users[u.Email] = u
	return nil
}
func (m *memDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.users[email], nil
}
func (m *memDB) GetFarmerProfile(ctx context.Context, userID string) (*models.FarmerProfile, error) {
	return nil, nil
}
func (m *memDB) UpsertFarmerProfile(ctx context.Context, p *models.FarmerProfile) error { return nil }
func (m *memDB) CreateFarm(ctx context.Context, f *models.Farm) error                   { return nil }
func (m *memDB) GetFarmByID(ctx context.Context, id string) (*models.Farm, error)       { return nil, nil }
func (m *memDB) ListFarmsByUser(ctx context.Context, userID string) ([]models.Farm, error) {
	return nil, nil
}
func (m *memDB) UpdateFarm(ctx context.Context, f *models.Farm) error     { return nil }
func (m *memDB) DeleteFarm(ctx context.Context, id, userID string) error  { return nil }
func (m *memDB) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	return nil
}
func (m *memDB) ListChatMessages(ctx context.Context, userID string, farmID *string, limit int) ([]models.ChatMessage, error) {
	m.histFarm = farmID
	m.histLimit = limit
	return m.history, nil
}
func (m *memDB) DeleteChatMessage(ctx context.Context, id, userID string) error { return nil }
func (m *memDB) ClearChatHistory(ctx context.Context, userID string, farmID *string) error {
	return nil
}
func (m *memDB) CountChatMessages(ctx context.Context, userID string) (int, error) {
	return m.total, nil
}
func (m *memDB) Close() error                                                      { return nil }
