package models

import (
	"time"
)

// Roles for conversation turns and persisted chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FarmerProfile holds the contact and locale details a farmer fills in
// during onboarding.
type FarmerProfile struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	PhoneNumber       string    `db:"phone_number" json:"phone_number"`
	PreferredLanguage string    `db:"preferred_language" json:"preferred_language"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Location is a point on the map, optionally with a human-readable address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Farm represents one farm record owned by a user. The selected farm scopes
// weather lookups and chat history.
type Farm struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	Location       Location  `db:"location" json:"location"`
	SizeAcres      float64   `db:"size_acres" json:"size_acres,omitempty"`
	CropType       string    `db:"crop_type" json:"crop_type"`
	IrrigationType string    `db:"irrigation_type" json:"irrigation_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Turn is one role-tagged message in a conversation sent to the completion
// provider. Turns are ephemeral; the system turn is never persisted.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports the provider's token accounting for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the normalized result of one completion call: the raw text of
// the provider's first choice (it may still contain an embedded reasoning
// block) plus usage stats.
type Completion struct {
	Message string `json:"message"`
	Usage   Usage  `json:"usage"`
}

// ChatMessage is a persisted chat turn. For assistant messages Content holds
// only the user-visible answer; Thinking, if present, holds the reasoning
// segment extracted from the raw model output. FarmID is nil for the
// "general" (farm-less) conversation bucket.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	FarmID    *string   `db:"farm_id" json:"farm_id,omitempty"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	Thinking  *string   `db:"thinking" json:"thinking,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WeatherSnapshot holds the named numeric fields returned by the weather
// provider for the current UTC hour. A nil field means the provider did not
// report it; consumers render it as unknown.
type WeatherSnapshot struct {
	Temperature         *float64 `json:"temperature,omitempty"`
	Precipitation       *float64 `json:"precipitation,omitempty"`
	WindSpeed           *float64 `json:"windSpeed,omitempty"`
	Pressure            *float64 `json:"pressure,omitempty"`
	AirQuality          *float64 `json:"airQuality,omitempty"`
	PM25                *float64 `json:"pm25,omitempty"`
	FireWarning         *float64 `json:"fireWarning,omitempty"`
	SoilMoistureDeficit *float64 `json:"soilMoistureDeficit,omitempty"`
	Evapotranspiration  *float64 `json:"evapotranspiration,omitempty"`
	LeafWetness         *float64 `json:"leafWetness,omitempty"`
}

// WeatherReport is the weather proxy's response envelope.
type WeatherReport struct {
	Timestamp string          `json:"timestamp"`
	Location  ReportLocation  `json:"location"`
	Data      WeatherSnapshot `json:"data"`
}

// ReportLocation mirrors the coordinates the report was requested for.
type ReportLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
