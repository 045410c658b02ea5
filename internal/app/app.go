package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/krishanu8219/AgroLabs/internal/config"
	"github.com/krishanu8219/AgroLabs/internal/core"
	db "github.com/krishanu8219/AgroLabs/internal/core/database"
	"github.com/krishanu8219/AgroLabs/internal/core/llm"
	"github.com/krishanu8219/AgroLabs/internal/core/weather"
)

type App struct {
	DBClient core.DbClient
	Provider core.CompletionProvider
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	provider, err := newCompletionProvider(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	logger.Info("completion provider ready", "provider", cfg.AIProvider)

	weatherClient := weather.NewMeteomaticsClient(cfg.MeteomaticsUser, cfg.MeteomaticsPass, "")

	server := NewServer(cfg, logger, dbClient, provider, weatherClient)

	return &App{DBClient: dbClient, Provider: provider, Server: server}, nil
}

func newCompletionProvider(ctx context.Context, cfg *config.Config) (core.CompletionProvider, error) {
	switch cfg.AIProvider {
	case "", "perplexity":
		return llm.NewPerplexityClient(cfg.PerplexityAPIKey, cfg.PerplexityModel, ""), nil
	case "gemini":
		return llm.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GenModel)
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}

func (a *App) Close() {
	if closer, ok := a.Provider.(io.Closer); ok {
		_ = closer.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
