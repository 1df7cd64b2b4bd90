package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	httpadapter "github.com/jpmarichal/ccmwf-go/adapter/in/http"
	"github.com/jpmarichal/ccmwf-go/config"
	"github.com/jpmarichal/ccmwf-go/infra/middleware"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "ccmwf-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.InputSanitizer())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
		MaxAge:       86400,
	}))

	healthHandler := httpadapter.NewHealthHandler(deps.DB, deps.Redis)
	healthHandler.Register(app)

	orchestratorHandler := httpadapter.NewOrchestratorHandler(deps.Orchestrator, deps.Debouncer)
	orchestratorHandler.Register(app)

	datasetHandler := httpadapter.NewDatasetHandler(cfg, deps.Records, deps.CacheService, deps.DatasetRunner)
	datasetHandler.Register(app)

	logger.Info("API server initialized successfully")
	return app, cleanup, nil
}
