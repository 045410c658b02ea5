package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/krishanu8219/AgroLabs/internal/api/middlewares"
	"github.com/krishanu8219/AgroLabs/internal/models"
	"github.com/krishanu8219/AgroLabs/internal/services"
)

type FarmHandler struct {
	farms *services.FarmService
}

func NewFarmHandler(farms *services.FarmService) *FarmHandler {
	return &FarmHandler{farms: farms}
}

type farmRequest struct {
	Name           string          `json:"name"`
	Location       models.Location `json:"location"`
	SizeAcres      float64         `json:"size_acres"`
	CropType       string          `json:"crop_type"`
	IrrigationType string          `json:"irrigation_type"`
}

func (req *farmRequest) toFarm() *models.Farm {
	return &models.Farm{
		Name:           req.Name,
		Location:       req.Location,
		SizeAcres:      req.SizeAcres,
		CropType:       req.CropType,
		IrrigationType: req.IrrigationType,
	}
}

func (h *FarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req farmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "farm name is required")
		return
	}

	farm, err := h.farms.Create(r.Context(), userID, req.toFarm())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create farm")
		return
	}
	writeJSON(w, http.StatusCreated, farm)
}

func (h *FarmHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	farms, err := h.farms.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list farms")
		return
	}
	if farms == nil {
		farms = []models.Farm{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"farms": farms})
}

func (h *FarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	farm, err := h.farms.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, services.ErrFarmNotFound) {
			writeError(w, http.StatusNotFound, "farm not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load farm")
		return
	}
	writeJSON(w, http.StatusOK, farm)
}

func (h *FarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req farmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "farm name is required")
		return
	}

	farm := req.toFarm()
	farm.ID = chi.URLParam(r, "id")

	updated, err := h.farms.Update(r.Context(), userID, farm)
	if err != nil {
		if errors.Is(err, services.ErrFarmNotFound) {
			writeError(w, http.StatusNotFound, "farm not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update farm")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *FarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.farms.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		if errors.Is(err, services.ErrFarmNotFound) {
			writeError(w, http.StatusNotFound, "farm not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete farm")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
