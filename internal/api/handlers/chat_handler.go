package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	middleware "github.com/krishanu8219/AgroLabs/internal/api/middlewares"
	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/core/llm"
	"github.com/krishanu8219/AgroLabs/internal/models"
	"github.com/krishanu8219/AgroLabs/internal/services"
)

type ChatHandler struct {
	llm  core.CompletionProvider
	chat *services.ChatService
}

func NewChatHandler(provider core.CompletionProvider, chat *services.ChatService) *ChatHandler {
	return &ChatHandler{llm: provider, chat: chat}
}

type completionRequest struct {
	Messages []models.Turn `json:"messages"`
}

// Complete is the stateless completion proxy: caller-supplied turns in, one
// provider call, nothing persisted.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages array is required")
		return
	}

	completion, err := h.llm.Complete(r.Context(), req.Messages)
	if err != nil {
		writeCompletionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": completion.Message,
		"usage":   completion.Usage,
	})
}

// writeCompletionError maps provider failures onto the proxy contract:
// upstream failures keep the upstream status and its formatted message,
// everything else is internal.
func writeCompletionError(w http.ResponseWriter, err error) {
	var ue *llm.UpstreamError
	switch {
	case errors.As(err, &ue):
		writeError(w, ue.Status, ue.Error())
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
	}
}

type sendRequest struct {
	Content string  `json:"content"`
	FarmID  *string `json:"farm_id"`
}

// Send runs one persisted chat turn: store the user message, call the
// provider with weather context, store and return the assistant reply.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	msg, usage, err := h.chat.Send(r.Context(), userID, req.FarmID, req.Content)
	if err != nil {
		writeCompletionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"usage":   usage,
	})
}

// History returns the user's messages oldest first. An absent farm_id query
// parameter selects the general bucket.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	farmID := farmIDParam(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.chat.History(r.Context(), userID, farmID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}

	total, err := h.chat.Count(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs, "total": total})
}

// Clear deletes the user's history, optionally scoped to one farm bucket.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.chat.Clear(r.Context(), userID, farmIDParam(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear chat history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMessage removes one message owned by the user.
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.chat.DeleteMessage(r.Context(), id, userID); err != nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// farmIDParam reads the optional farm_id query parameter; absent or empty
// means the general bucket.
func farmIDParam(r *http.Request) *string {
	if v := r.URL.Query().Get("farm_id"); v != "" {
		return &v
	}
	return nil
}
