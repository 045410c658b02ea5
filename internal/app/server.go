package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/krishanu8219/AgroLabs/internal/api/handlers"
	appMiddleware "github.com/krishanu8219/AgroLabs/internal/api/middlewares"
	"github.com/krishanu8219/AgroLabs/internal/config"
	"github.com/krishanu8219/AgroLabs/internal/core"
	"github.com/krishanu8219/AgroLabs/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *slog.Logger, db core.DbClient, provider core.CompletionProvider, weatherProvider core.WeatherProvider) *Server {
	userService := services.NewUserService(db)
	farmService := services.NewFarmService(db)
	chatService := services.NewChatService(db, provider, weatherProvider, logger)

	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(provider, chatService)
	weatherHandler := handlers.NewWeatherHandler(weatherProvider)
	farmHandler := handlers.NewFarmHandler(farmService)
	profileHandler := handlers.NewProfileHandler(userService)
	advisoryHandler := handlers.NewAdvisoryHandler(chatService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))

			protected.Post("/chat", chatHandler.Complete)
			protected.Post("/chat/send", chatHandler.Send)
			protected.Get("/chat/history", chatHandler.History)
			protected.Delete("/chat/history", chatHandler.Clear)
			protected.Delete("/chat/messages/{id}", chatHandler.DeleteMessage)

			protected.Get("/weather", weatherHandler.Current)

			protected.Get("/profile", profileHandler.Get)
			protected.Put("/profile", profileHandler.Put)

			protected.Route("/farms", func(farms chi.Router) {
				farms.Post("/", farmHandler.Create)
				farms.Get("/", farmHandler.List)
				farms.Get("/{id}", farmHandler.Get)
				farms.Put("/{id}", farmHandler.Update)
				farms.Delete("/{id}", farmHandler.Delete)
			})

			protected.Post("/advisory/crops", advisoryHandler.Crops)
			protected.Post("/advisory/pesticides", advisoryHandler.Pesticides)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
