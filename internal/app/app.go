package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/redis"
	"github.com/twotable/twotable-backend/internal/db"
	"github.com/twotable/twotable-backend/internal/http/handlers"
	"github.com/twotable/twotable-backend/internal/observability"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
	"github.com/twotable/twotable-backend/internal/server"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cache    redis.Cache
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbService, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	cache := redis.NewCache(log)

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, cache)
	if err != nil {
		log.Sync()
		return nil, err
	}

	log.Info("Wiring handlers...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		TracingEnabled: observability.Enabled(),
		HealthHandler:  handlers.NewHealthHandler(),
		SuggestHandler: handlers.NewSuggestHandler(serviceset.Matcher),
		VenueHandler:   handlers.NewVenueHandler(serviceset.Availability, serviceset.Scenario, serviceset.VenueEmbeddings),
		BookingHandler: handlers.NewBookingHandler(serviceset.Booking),
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Cache:    cache,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.VenueEmbeddings != nil {
		a.Services.VenueEmbeddings.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
