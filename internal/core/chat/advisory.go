package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/krishanu8219/AgroLabs/internal/models"
)

// The advisory flows are single-shot: one instruction system turn plus a
// fixed user trigger turn, no conversation history.

const cropTrigger = "Provide the recommended crops now."
const pesticideTrigger = "Provide the pesticide/biocontrol advisory now."

// CropAdvisoryConversation builds the turn list for the crop suggestion flow.
func CropAdvisoryConversation(w *models.WeatherSnapshot, loc *models.Location) []models.Turn {
	if w == nil {
		w = &models.WeatherSnapshot{}
	}
	var parts []string
	parts = append(parts, "You are an expert agronomist. Based ONLY on the following weather snapshot and location, suggest 8-12 crop varieties (mix of staples, vegetables, fruits, legumes, oilseeds) that are newly or increasingly viable due to climate shifts. Output STRICTLY in this markdown format (no extra commentary):")
	parts = append(parts, "")
	parts = append(parts, "**Crop Name**")
	parts = append(parts, "- **Suitability Score:** 88/100")
	parts = append(parts, "- **Rationale:** short justification")
	parts = append(parts, "- **Planting Window:** date range")
	parts = append(parts, "- **Irrigation Needs:** short guidance")
	parts = append(parts, "- **Key Risks:** short risks")
	parts = append(parts, "")
	if loc != nil {
		parts = append(parts, fmt.Sprintf("Location: %.4f, %.4f", loc.Lat, loc.Lng))
	}
	parts = append(parts, snapshotLines(w)...)
	parts = append(parts, "Do not include any <think> sections.")

	return []models.Turn{
		{Role: models.RoleSystem, Content: strings.Join(parts, "\n")},
		{Role: models.RoleUser, Content: cropTrigger},
	}
}

// PesticideAdvisoryConversation builds the turn list for the IPM advisory
// flow. crops is an optional comma-separated list supplied by the farmer.
func PesticideAdvisoryConversation(w *models.WeatherSnapshot, loc *models.Location, crops string) []models.Turn {
	if w == nil {
		w = &models.WeatherSnapshot{}
	}
	var parts []string
	parts = append(parts, "You are an integrated pest management (IPM) advisor. Provide a concise pesticide/biocontrol plan in markdown. Include: likely pest/disease pressures, recommended actives or biocontrols, PHI/REI notes, spray timing windows based on weather (wind/precip/leaf wetness), resistance-rotation guidance, and safety/environment cautions.")
	if loc != nil {
		parts = append(parts, fmt.Sprintf("Location: %.4f, %.4f", loc.Lat, loc.Lng))
	}
	parts = append(parts, "Weather snapshot:")
	parts = append(parts, fmt.Sprintf("- Temperature: %s °C", orNA(w.Temperature)))
	parts = append(parts, fmt.Sprintf("- Precip (1h): %s mm", orNA(w.Precipitation)))
	parts = append(parts, fmt.Sprintf("- Wind: %s m/s", orNA(w.WindSpeed)))
	parts = append(parts, fmt.Sprintf("- Leaf wetness idx: %s", orNA(w.LeafWetness)))
	parts = append(parts, "Predict likely target pests and diseases given the weather and any crops provided.")
	if crops != "" {
		parts = append(parts, "Crops provided: "+crops)
	}
	parts = append(parts, "Do not include any <think> sections.")
	parts = append(parts, "Format as short headings and bullet points.")

	return []models.Turn{
		{Role: models.RoleSystem, Content: strings.Join(parts, "\n")},
		{Role: models.RoleUser, Content: pesticideTrigger},
	}
}

func snapshotLines(w *models.WeatherSnapshot) []string {
	return []string{
		"Weather snapshot:",
		fmt.Sprintf("- Temperature: %s °C", orNA(w.Temperature)),
		fmt.Sprintf("- Precip (1h): %s mm", orNA(w.Precipitation)),
		fmt.Sprintf("- Wind: %s m/s", orNA(w.WindSpeed)),
		fmt.Sprintf("- Pressure: %s hPa", orNA(w.Pressure)),
		fmt.Sprintf("- Air quality idx: %s", orNA(w.AirQuality)),
		fmt.Sprintf("- PM2.5: %s µg/m³", orNA(w.PM25)),
		fmt.Sprintf("- Fire risk idx: %s", orNA(w.FireWarning)),
		fmt.Sprintf("- Soil moisture deficit: %s mm", orNA(w.SoilMoistureDeficit)),
		fmt.Sprintf("- Evapotranspiration: %s mm/h", orNA(w.Evapotranspiration)),
		fmt.Sprintf("- Leaf wetness idx: %s", orNA(w.LeafWetness)),
	}
}

func orNA(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
}

// CropRecommendation is one parsed entry of the crop advisory's markdown.
type CropRecommendation struct {
	Title      string `json:"title"`
	Score      string `json:"score,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
	Window     string `json:"window,omitempty"`
	Irrigation string `json:"irrigation,omitempty"`
	Risks      string `json:"risks,omitempty"`
}

var titleDecor = regexp.MustCompile(`^\*+|^#+\s*`)

// ParseCropRecommendations splits the advisory markdown into structured
// entries: blank-line separated blocks, first line is the title, remaining
// "key: value" lines are matched loosely by keyword. Returns nil when nothing
// parses, so callers can fall back to the raw markdown.
func ParseCropRecommendations(text string) []CropRecommendation {
	blocks := strings.Split(text, "\n\n")
	var items []CropRecommendation
	for _, block := range blocks {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		title := titleDecor.ReplaceAllString(lines[0], "")
		title = strings.Trim(title, "*")
		if title == "" {
			continue
		}
		rec := CropRecommendation{Title: title}
		for _, line := range lines[1:] {
			key, val, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			val = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(val), "*"))
			switch key = strings.ToLower(key); {
			case strings.Contains(key, "suitability"):
				rec.Score = val
			case strings.Contains(key, "rationale"):
				rec.Rationale = val
			case strings.Contains(key, "planting"):
				rec.Window = val
			case strings.Contains(key, "irrigation"):
				rec.Irrigation = val
			case strings.Contains(key, "risk"):
				rec.Risks = val
			}
		}
		items = append(items, rec)
	}
	return items
}

func nonEmptyLines(block string) []string {
	var out []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
