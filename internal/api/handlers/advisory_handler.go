package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	middleware "github.com/krishanu8219/AgroLabs/internal/api/middlewares"
	"github.com/krishanu8219/AgroLabs/internal/core/chat"
	"github.com/krishanu8219/AgroLabs/internal/models"
	"github.com/krishanu8219/AgroLabs/internal/services"
)

type AdvisoryHandler struct {
	chat *services.ChatService
}

func NewAdvisoryHandler(chat *services.ChatService) *AdvisoryHandler {
	return &AdvisoryHandler{chat: chat}
}

type advisoryRequest struct {
	FarmID *string `json:"farm_id"`
	Crops  string  `json:"crops"`
}

// Crops runs the single-shot crop suggestion flow and returns the raw
// markdown plus the parsed entries.
func (h *AdvisoryHandler) Crops(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req advisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	markdown, usage, err := h.chat.Advise(r.Context(), userID, req.FarmID, chat.CropAdvisoryConversation)
	if err != nil {
		writeAdvisoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markdown":        markdown,
		"recommendations": chat.ParseCropRecommendations(markdown),
		"usage":           usage,
	})
}

// Pesticides runs the single-shot IPM advisory flow.
func (h *AdvisoryHandler) Pesticides(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req advisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	build := func(snapshot *models.WeatherSnapshot, loc *models.Location) []models.Turn {
		return chat.PesticideAdvisoryConversation(snapshot, loc, req.Crops)
	}

	markdown, usage, err := h.chat.Advise(r.Context(), userID, req.FarmID, build)
	if err != nil {
		writeAdvisoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markdown": markdown,
		"usage":    usage,
	})
}

func writeAdvisoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrFarmNotFound) {
		writeError(w, http.StatusNotFound, "farm not found")
		return
	}
	writeCompletionError(w, err)
}
