package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/models"
)

// GeminiLLM is the alternate completion provider, selected with
// AI_PROVIDER=gemini. It maps the same turn contract onto the Gemini chat
// API; upstream failures surface as internal errors rather than the
// status-carrying UpstreamError, since the SDK owns the transport.
type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Complete(ctx context.Context, turns []models.Turn) (*models.Completion, error) {
	if len(turns) == 0 {
		return nil, errors.New("no turns to send")
	}

	m := g.client.GenerativeModel(g.modelName)

	// Gemini takes system text as a model-level instruction, not a turn.
	sysParts := []genai.Part{genai.Text(systemPersona)}
	var rest []models.Turn
	for _, t := range turns {
		if t.Role == models.RoleSystem {
			sysParts = append(sysParts, genai.Text(t.Content))
			continue
		}
		rest = append(rest, t)
	}
	m.SystemInstruction = &genai.Content{Parts: sysParts}

	if len(rest) == 0 {
		return nil, errors.New("no user turns to send")
	}

	cs := m.StartChat()
	for _, t := range rest[:len(rest)-1] {
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(rest[len(rest)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("completion returned no choices")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	out := &models.Completion{Message: b.String()}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = models.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

var _ core.CompletionProvider = (*GeminiLLM)(nil)
