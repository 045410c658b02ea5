package handlers

import (
	"errors"
	"net/http"
	"strconv"

	middleware "github.com/krishanu8219/AgroLabs/internal/api/middlewares"
	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/core/weather"
)

type WeatherHandler struct {
	provider core.WeatherProvider
}

func NewWeatherHandler(provider core.WeatherProvider) *WeatherHandler {
	return &WeatherHandler{provider: provider}
}

// Current proxies one snapshot request. Coordinates are validated before any
// upstream call is made.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" || lonStr == "" {
		writeError(w, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	report, err := h.provider.Current(r.Context(), lat, lon)
	if err != nil {
		var ue *weather.UpstreamError
		switch {
		case errors.As(err, &ue):
			writeJSON(w, ue.Status, map[string]string{
				"error":   "Failed to fetch weather data",
				"details": ue.Details,
			})
		case errors.Is(err, weather.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to fetch weather data",
				"details": err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}
