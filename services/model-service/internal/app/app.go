package app

import (
	"context"

	"go.uber.org/zap"

	"queuesense/services/model-service/internal/config"
	httpserver "queuesense/services/model-service/internal/http"
	"queuesense/services/model-service/internal/http/handlers"
)

// App wires model-service dependencies.
type App struct {
	server *httpserver.Server
	logger *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	predictHandler := handlers.NewPredictHandler(logger)

	routes := httpserver.Routes{
		Predict: predictHandler.HandlePredict,
		Health:  handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}
