package chat

import (
	"fmt"
	"strings"

	"github.com/krishanu8219/AgroLabs/internal/models"
)

// weatherUnavailable is sent as the system turn whenever live weather data
// could not be fetched. The assembler never sends an absent context silently.
const weatherUnavailable = `Weather data is currently unavailable for this farm. Please provide general agricultural advice based on best practices and ask the farmer for specific weather conditions if needed for recommendations.`

// BuildConversation returns the exact ordered turn list for one chat turn:
// an optional context system turn, the prior turns, then the new user turn.
// Inputs are never mutated.
func BuildConversation(prior []models.Turn, user models.Turn, contextBlock string) []models.Turn {
	out := make([]models.Turn, 0, len(prior)+2)
	if contextBlock != "" {
		out = append(out, models.Turn{Role: models.RoleSystem, Content: contextBlock})
	}
	out = append(out, prior...)
	out = append(out, user)
	return out
}

// WeatherContext renders the system context block for a chat turn. With a
// snapshot and location it interpolates the named fields (missing field
// renders as Unknown); without either it returns the fixed unavailable
// instruction.
func WeatherContext(w *models.WeatherSnapshot, loc *models.Location) string {
	if w == nil || loc == nil {
		return weatherUnavailable
	}
	var b strings.Builder
	b.WriteString("Current farm weather conditions:\n")
	fmt.Fprintf(&b, "- Temperature: %s\n", fmtValue(w.Temperature, 1, "°C"))
	fmt.Fprintf(&b, "- Precipitation: %s (1h)\n", fmtValue(w.Precipitation, 1, "mm"))
	fmt.Fprintf(&b, "- Wind Speed: %s\n", fmtValue(w.WindSpeed, 1, "m/s"))
	fmt.Fprintf(&b, "- Atmospheric Pressure: %s\n", fmtValue(w.Pressure, 0, " hPa"))
	fmt.Fprintf(&b, "- Air Quality: %s\n", airQualityLabel(w.AirQuality))
	fmt.Fprintf(&b, "- PM2.5: %s\n", fmtValue(w.PM25, 1, " μg/m³"))
	fmt.Fprintf(&b, "- Fire Risk: %s\n", fireRiskLabel(w.FireWarning))
	fmt.Fprintf(&b, "- Soil Moisture Deficit: %s\n", fmtValue(w.SoilMoistureDeficit, 1, " mm"))
	fmt.Fprintf(&b, "- Evapotranspiration: %s\n", fmtValue(w.Evapotranspiration, 2, " mm/h"))
	fmt.Fprintf(&b, "- Leaf Wetness: %s\n", leafWetnessLabel(w.LeafWetness))
	fmt.Fprintf(&b, "- Farm Location: %.4f, %.4f\n", loc.Lat, loc.Lng)
	b.WriteString("\nUse this real-time weather data to provide specific, actionable recommendations for the farmer's current conditions.")
	return b.String()
}

func fmtValue(v *float64, prec int, unit string) string {
	if v == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%.*f%s", prec, *v, unit)
}

// Index buckets follow the Meteomatics air_quality:idx scale.
func airQualityLabel(idx *float64) string {
	switch {
	case idx == nil:
		return "Unknown"
	case *idx <= 1:
		return "Good"
	case *idx <= 2:
		return "Moderate"
	case *idx <= 3:
		return "Unhealthy for Sensitive"
	case *idx <= 4:
		return "Unhealthy"
	case *idx <= 5:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

func fireRiskLabel(idx *float64) string {
	switch {
	case idx == nil:
		return "Unknown"
	case *idx <= 0.2:
		return "Low Risk"
	case *idx <= 0.5:
		return "Moderate Risk"
	case *idx <= 0.8:
		return "High Risk"
	default:
		return "Extreme Risk"
	}
}

func leafWetnessLabel(idx *float64) string {
	switch {
	case idx == nil:
		return "Unknown"
	case *idx == 0:
		return "Dry"
	default:
		return "Wet"
	}
}
