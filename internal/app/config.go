package app

import (
	"strings"

	"github.com/twotable/twotable-backend/internal/pkg/logger"
	"github.com/twotable/twotable-backend/internal/utils"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	Port        string

	EmbeddingProvider string
	RoutingProvider   string
	GeocodingProvider string
	VectorProvider    string

	RoutingAPIKey   string
	GeocodingAPIKey string

	TravelTimeCacheTTLHours int
	GeocodingCacheTTLDays   int

	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	origins := []string{}
	for _, o := range strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		ServiceName: "twotable-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
		Port:        utils.GetEnv("PORT", "8080", log),

		EmbeddingProvider: strings.ToLower(utils.GetEnv("EMBEDDING_PROVIDER", "openai", log)),
		RoutingProvider:   strings.ToLower(utils.GetEnv("ROUTING_PROVIDER", "tomtom", log)),
		GeocodingProvider: strings.ToLower(utils.GetEnv("GEOCODING_PROVIDER", "tomtom", log)),
		VectorProvider:    strings.ToLower(utils.GetEnv("VECTOR_PROVIDER", "local", log)),

		RoutingAPIKey:   utils.GetEnv("ROUTING_API_KEY", "", log),
		GeocodingAPIKey: utils.GetEnv("GEOCODING_API_KEY", "", log),

		TravelTimeCacheTTLHours: utils.GetEnvAsInt("TRAVEL_TIME_CACHE_TTL_HOURS", 72, log),
		GeocodingCacheTTLDays:   utils.GetEnvAsInt("GEOCODING_CACHE_TTL_DAYS", 30, log),

		AllowedOrigins: origins,
	}
}
