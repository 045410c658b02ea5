// Package weather wraps the Meteomatics point-query API: one GET per
// request for a fixed parameter set at the current UTC hour.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

const meteomaticsBase = "https://api.meteomatics.com"

// parameters is the fixed set queried for every snapshot.
var parameters = []string{
	"wind_speed_10m:ms",
	"msl_pressure:hPa",
	"soil_moisture_deficit:mm",
	"evapotranspiration_1h:mm",
	"air_quality:idx",
	"pm2p5:ugm3",
	"forest_fire_warning:idx",
	"t_2m:C",
	"precip_1h:mm",
	"leaf_wetness:idx",
}

// ErrNotConfigured is returned before any network call when the credentials
// are missing.
var ErrNotConfigured = errors.New("Meteomatics credentials not configured")

// UpstreamError carries a non-success provider status. Details distinguishes
// credential failures from the rest.
type UpstreamError struct {
	Status  int
	Details string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather upstream error (%d): %s", e.Status, e.Details)
}

// MeteomaticsClient fetches weather snapshots with HTTP basic auth.
type MeteomaticsClient struct {
	username   string
	password   string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewMeteomaticsClient builds a client. An empty baseURL selects the
// production API.
func NewMeteomaticsClient(username, password, baseURL string) *MeteomaticsClient {
	if baseURL == "" {
		baseURL = meteomaticsBase
	}
	return &MeteomaticsClient{
		username:   username,
		password:   password,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

type meteomaticsResponse struct {
	Data []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Dates []struct {
				Date  time.Time `json:"date"`
				Value float64   `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}

// Current fetches the snapshot for the current UTC hour, rounded down, at the
// given coordinates.
func (c *MeteomaticsClient) Current(ctx context.Context, lat, lon float64) (*models.WeatherReport, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrNotConfigured
	}

	iso := c.now().UTC().Truncate(time.Hour).Format("2006-01-02T15:04:05Z")
	endpoint := fmt.Sprintf("%s/%s--%s:PT1H/%s/%.6f,%.6f/json?model=%s",
		c.baseURL, iso, iso, strings.Join(parameters, ","), lat, lon, url.QueryEscape("mix"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meteomatics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		details := resp.Status
		if resp.StatusCode == http.StatusUnauthorized {
			details = "Invalid credentials"
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Details: details}
	}

	var mr meteomaticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	report := &models.WeatherReport{
		Timestamp: iso,
		Location:  models.ReportLocation{Lat: lat, Lon: lon},
	}
	for _, item := range mr.Data {
		if len(item.Coordinates) == 0 || len(item.Coordinates[0].Dates) == 0 {
			continue
		}
		v := item.Coordinates[0].Dates[0].Value
		assign(&report.Data, item.Parameter, v)
	}
	return report, nil
}

func assign(s *models.WeatherSnapshot, parameter string, v float64) {
	val := v
	switch parameter {
	case "wind_speed_10m:ms":
		s.WindSpeed = &val
	case "msl_pressure:hPa":
		s.Pressure = &val
	case "soil_moisture_deficit:mm":
		s.SoilMoistureDeficit = &val
	case "evapotranspiration_1h:mm":
		s.Evapotranspiration = &val
	case "air_quality:idx":
		s.AirQuality = &val
	case "pm2p5:ugm3":
		s.PM25 = &val
	case "forest_fire_warning:idx":
		s.FireWarning = &val
	case "t_2m:C":
		s.Temperature = &val
	case "precip_1h:mm":
		s.Precipitation = &val
	case "leaf_wetness:idx":
		s.LeafWetness = &val
	}
}

var _ core.WeatherProvider = (*MeteomaticsClient)(nil)
