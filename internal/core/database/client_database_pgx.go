package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/krishanu8219/AgroLabs/internal/config"
	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: sqlDB}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for farmer profiles

func (c *DatabaseClient) GetFarmerProfile(ctx context.Context, userID string) (*models.FarmerProfile, error) {
	const q = `
		SELECT id, user_id, first_name, last_name, phone_number, preferred_language, created_at, updated_at
		FROM farmer_profiles WHERE user_id = $1
	`
	var p models.FarmerProfile
	err := c.db.QueryRowContext(ctx, q, userID).Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.PhoneNumber, &p.PreferredLanguage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *DatabaseClient) UpsertFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error {
	if profile == nil {
		return errors.New("nil profile")
	}
	const q = `
		INSERT INTO farmer_profiles
			(id, user_id, first_name, last_name, phone_number, preferred_language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone_number = EXCLUDED.phone_number,
			preferred_language = EXCLUDED.preferred_language,
			updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q,
		profile.ID, profile.UserID, profile.FirstName, profile.LastName, profile.PhoneNumber, profile.PreferredLanguage)
	return err
}

// Implementing the db interface for farms

func (c *DatabaseClient) CreateFarm(ctx context.Context, farm *models.Farm) error {
	if farm == nil {
		return errors.New("nil farm")
	}
	const q = `
		INSERT INTO farms
			(id, user_id, name, lat, lng, address, size_acres, crop_type, irrigation_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		farm.ID, farm.UserID, farm.Name, farm.Location.Lat, farm.Location.Lng, farm.Location.Address,
		farm.SizeAcres, farm.CropType, farm.IrrigationType)
	return err
}

func (c *DatabaseClient) GetFarmByID(ctx context.Context, id string) (*models.Farm, error) {
	const q = `
		SELECT id, user_id, name, lat, lng, address, size_acres, crop_type, irrigation_type, created_at, updated_at
		FROM farms WHERE id = $1
	`
	var f models.Farm
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.UserID, &f.Name, &f.Location.Lat, &f.Location.Lng, &f.Location.Address,
		&f.SizeAcres, &f.CropType, &f.IrrigationType, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *DatabaseClient) ListFarmsByUser(ctx context.Context, userID string) ([]models.Farm, error) {
	const q = `
		SELECT id, user_id, name, lat, lng, address, size_acres, crop_type, irrigation_type, created_at, updated_at
		FROM farms
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Farm
	for rows.Next() {
		var f models.Farm
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.Name, &f.Location.Lat, &f.Location.Lng, &f.Location.Address,
			&f.SizeAcres, &f.CropType, &f.IrrigationType, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateFarm(ctx context.Context, farm *models.Farm) error {
	if farm == nil {
		return errors.New("nil farm")
	}
	const q = `
		UPDATE farms
		SET name = $3, lat = $4, lng = $5, address = $6, size_acres = $7, crop_type = $8, irrigation_type = $9, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q,
		farm.ID, farm.UserID, farm.Name, farm.Location.Lat, farm.Location.Lng, farm.Location.Address,
		farm.SizeAcres, farm.CropType, farm.IrrigationType)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("farm not found: %s", farm.ID)
	}
	return nil
}

func (c *DatabaseClient) DeleteFarm(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM farms WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("farm not found: %s", id)
	}
	return nil
}

// Implementing the db interface for chat messages

func (c *DatabaseClient) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages (id, user_id, farm_id, role, content, thinking, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	var createdAt any
	if !msg.CreatedAt.IsZero() {
		createdAt = msg.CreatedAt
	}
	_, err := c.db.ExecContext(ctx, q,
		msg.ID, msg.UserID, msg.FarmID, msg.Role, msg.Content, msg.Thinking, createdAt)
	return err
}

// ListChatMessages returns a user's messages oldest first. A nil farmID
// selects the "general" bucket (farm_id IS NULL); a non-nil one filters to
// that farm.
func (c *DatabaseClient) ListChatMessages(ctx context.Context, userID string, farmID *string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, user_id, farm_id, role, content, thinking, created_at
		FROM chat_messages
		WHERE user_id = $1
		  AND (($2::uuid IS NULL AND farm_id IS NULL) OR farm_id = $2)
		ORDER BY created_at ASC
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, userID, farmID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.FarmID, &m.Role, &m.Content, &m.Thinking, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteChatMessage(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM chat_messages WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("message not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) ClearChatHistory(ctx context.Context, userID string, farmID *string) error {
	if farmID == nil {
		const q = `DELETE FROM chat_messages WHERE user_id = $1`
		_, err := c.db.ExecContext(ctx, q, userID)
		return err
	}
	const q = `DELETE FROM chat_messages WHERE user_id = $1 AND farm_id = $2`
	_, err := c.db.ExecContext(ctx, q, userID, *farmID)
	return err
}

func (c *DatabaseClient) CountChatMessages(ctx context.Context, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM chat_messages WHERE user_id = $1`
	var n int
	if err := c.db.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
