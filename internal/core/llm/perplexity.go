package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

const perplexityEndpoint = "https://api.perplexity.ai/chat/completions"

// systemPersona is prepended ahead of every caller-supplied turn list.
const systemPersona = `You are an expert agricultural AI assistant powered by satellite data analysis.
Your role is to help farmers make informed decisions about their crops, land, and farming practices.
You have access to real-time satellite imagery data and can provide insights on:
- Crop health monitoring (NDVI analysis)
- Irrigation optimization
- Pest and disease detection
- Weather forecasting and planning
- Soil condition assessment
- Yield prediction
- Fertilization recommendations

Provide practical, actionable advice tailored to modern farming practices.
Be specific, data-driven, and always prioritize sustainable farming methods.
When discussing specific fields or crops, reference satellite data insights when relevant.`

// ErrNotConfigured is returned before any network call when the provider
// credential is missing.
var ErrNotConfigured = errors.New("Perplexity API key not configured")

// UpstreamError carries a non-success provider status and the best-effort
// message extracted from its body.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API Error (%d): %s", e.Provider, e.Status, e.Message)
}

// PerplexityClient issues one synchronous chat-completion call per request.
// No retries, no streaming, no timeout beyond the HTTP client's default.
type PerplexityClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewPerplexityClient builds a client for the given credential and model.
// An empty endpoint selects the production API.
func NewPerplexityClient(apiKey, model, endpoint string) *PerplexityClient {
	if model == "" {
		model = "sonar-reasoning"
	}
	if endpoint == "" {
		endpoint = perplexityEndpoint
	}
	return &PerplexityClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []models.Turn `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage models.Usage `json:"usage"`
}

// Complete prepends the advisory persona, posts the turn list, and returns
// the first choice's raw text together with usage stats.
func (c *PerplexityClient) Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	all := make([]models.Turn, 0, len(turns)+1)
	all = append(all, models.Turn{Role: models.RoleSystem, Content: systemPersona})
	all = append(all, turns...)

	payload, err := json.Marshal(chatCompletionRequest{Model: c.model, Messages: all})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexity request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := parseErrorBody(body)
		return nil, &UpstreamError{Provider: "Perplexity", Status: resp.StatusCode, Message: msg}
	}

	var cr chatCompletionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	return &models.Completion{Message: cr.Choices[0].Message.Content, Usage: cr.Usage}, nil
}

var _ core.CompletionProvider = (*PerplexityClient)(nil)
