package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"queuesense/services/device-service/internal/calibration"
	"queuesense/services/device-service/internal/config"
	"queuesense/services/device-service/internal/evaluator"
	httpserver "queuesense/services/device-service/internal/http"
	"queuesense/services/device-service/internal/http/handlers"
	"queuesense/services/device-service/internal/sensor"
	"queuesense/services/device-service/internal/service"
	"queuesense/services/device-service/internal/telemetry"
	"queuesense/services/device-service/internal/ws"
)

// App wires device-service dependencies.
type App struct {
	cfg       *config.Config
	server    *httpserver.Server
	service   *service.QueueService
	hub       *ws.Hub
	telemetry *telemetry.Publisher
	logger    *zap.Logger
}

// New constructs the application graph. A rejected calibration file is fatal
// here, never deferred to request time.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	cal, err := calibration.Load(cfg.Calibration.Path)
	if err != nil {
		return nil, fmt.Errorf("app: load calibration: %w", err)
	}
	logger.Info("calibration loaded",
		zap.String("model", cal.Model),
		zap.Int("occupancy_threshold_mm", cal.OccupancyThresholdMM),
	)

	drivers, err := buildDrivers(cfg.Sensors)
	if err != nil {
		return nil, err
	}
	poller := sensor.NewPoller(drivers, logger)

	var eval evaluator.Evaluator
	if cfg.Evaluator.Endpoint != "" {
		eval = evaluator.NewClient(
			cfg.Evaluator.Endpoint,
			cfg.EvaluatorTimeout(),
			cfg.Evaluator.UnavailableErrorCode,
			logger,
		)
		logger.Info("using remote evaluator", zap.String("endpoint", cfg.Evaluator.Endpoint))
	} else {
		eval = evaluator.NewLocal()
		logger.Info("using in-process evaluator")
	}

	queueService := service.NewQueueService(poller, cal, eval, logger)

	hub := ws.NewHub(0, 0, logger)
	queueService.Subscribe(service.Listener{
		OnReadings: hub.BroadcastReadings,
		OnEstimate: hub.BroadcastEstimate,
	})

	publisher, err := telemetry.NewPublisher(
		cfg.Telemetry.Broker,
		cfg.Telemetry.ClientID,
		cfg.Telemetry.Topic,
		logger,
	)
	if err != nil {
		return nil, err
	}
	queueService.Subscribe(service.Listener{OnEstimate: publisher.PublishEstimate})

	routes := httpserver.Routes{
		Queue:    handlers.NewQueueHandler(queueService, logger).HandleQueue,
		Health:   handlers.NewHealthHandler(queueService, logger).HandleHealth,
		Sensors:  handlers.NewSensorsHandler(queueService, logger).HandleSensors,
		Readings: handlers.NewReadingsHandler(queueService, logger).HandleReadings,
		Live:     hub.HandleLive,
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		cfg:       cfg,
		server:    server,
		service:   queueService,
		hub:       hub,
		telemetry: publisher,
		logger:    logger,
	}, nil
}

func buildDrivers(cfg config.SensorsConfig) ([]sensor.Driver, error) {
	if cfg.Driver != "mock" {
		return nil, fmt.Errorf("app: unsupported sensor driver %q", cfg.Driver)
	}

	addresses, err := sensor.AllocateAddresses(cfg.Count)
	if err != nil {
		return nil, err
	}

	drivers := make([]sensor.Driver, len(addresses))
	for i, address := range addresses {
		drivers[i] = sensor.NewMockDriver(address, cfg.MockDistanceMM)
	}
	return drivers, nil
}

// Run starts the refresh loop, the live-updates hub, and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	defer a.telemetry.Close()

	go a.service.RunRefresh(ctx, a.cfg.RefreshInterval())
	go a.hub.Run(ctx)

	return a.server.Run(ctx)
}
