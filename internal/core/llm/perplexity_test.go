package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu8219/AgroLabs/internal/models"
)

func TestCompletePrependsPersonaAndReturnsFirstChoice(t *testing.T) {
	var gotBody chatCompletionRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "<think>reasoning</think>Yes, irrigate now."}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	defer srv.Close()

	c := NewPerplexityClient("key-123", "sonar-reasoning", srv.URL)
	out, err := c.Complete(context.Background(), []models.Turn{
		{Role: models.RoleSystem, Content: "weather-context"},
		{Role: models.RoleUser, Content: "Should I irrigate?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, "sonar-reasoning", gotBody.Model)
	require.Len(t, gotBody.Messages, 3)
	assert.Equal(t, models.RoleSystem, gotBody.Messages[0].Role)
	assert.Contains(t, gotBody.Messages[0].Content, "expert agricultural AI assistant")
	assert.Equal(t, "weather-context", gotBody.Messages[1].Content)
	assert.Equal(t, "Should I irrigate?", gotBody.Messages[2].Content)

	assert.Equal(t, "<think>reasoning</think>Yes, irrigate now.", out.Message)
	assert.Equal(t, models.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30}, out.Usage)
}

func TestCompleteMissingKeySkipsNetworkCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewPerplexityClient("", "sonar-reasoning", srv.URL)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)
}

func TestCompleteUpstreamErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := NewPerplexityClient("key", "sonar-reasoning", srv.URL)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Equal(t, "rate limited", ue.Message)
	assert.Equal(t, "Perplexity API Error (429): rate limited", ue.Error())
}

func TestCompleteUpstreamErrorPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewPerplexityClient("key", "sonar-reasoning", srv.URL)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Perplexity API Error (502): upstream exploded", ue.Error())
}

func TestCompleteUpstreamErrorUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"something":"else"}`))
	}))
	defer srv.Close()

	c := NewPerplexityClient("key", "sonar-reasoning", srv.URL)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Unknown error", ue.Message)
}

func TestCompleteMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewPerplexityClient("key", "sonar-reasoning", srv.URL)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode completion"))
}

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantMsg  string
		wantKind ErrorBodyKind
	}{
		{"envelope", `{"error":{"message":"quota exceeded"}}`, "quota exceeded", ErrorBodyParsed},
		{"json string literal", `"service busy"`, "service busy", ErrorBodyFallback},
		{"plain text", "plain failure", "plain failure", ErrorBodyFallback},
		{"other json shape", `{"detail":"nope"}`, "Unknown error", ErrorBodyUnknown},
		{"empty body", "", "Unknown error", ErrorBodyUnknown},
		{"empty envelope message", `{"error":{"message":""}}`, "Unknown error", ErrorBodyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, kind := parseErrorBody([]byte(tt.body))
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}
