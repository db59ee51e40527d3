package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/twotable/twotable-backend/internal/http/handlers"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	TracingEnabled bool

	HealthHandler  *handlers.HealthHandler
	SuggestHandler *handlers.SuggestHandler
	VenueHandler   *handlers.VenueHandler
	BookingHandler *handlers.BookingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/suggest", cfg.SuggestHandler.Suggest)

		api.GET("/venues/available", cfg.VenueHandler.Available)
		api.POST("/venues/scenario-test", cfg.VenueHandler.ScenarioTest)

		api.POST("/bookings", cfg.BookingHandler.Create)

		admin := api.Group("/admin")
		admin.POST("/venues/embed-all", cfg.VenueHandler.EmbedAll)
	}

	return router
}
