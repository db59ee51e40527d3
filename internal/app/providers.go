package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/twotable/twotable-backend/internal/clients/geocoding"
	"github.com/twotable/twotable-backend/internal/clients/ollama"
	"github.com/twotable/twotable-backend/internal/clients/openai"
	"github.com/twotable/twotable-backend/internal/clients/pinecone"
	"github.com/twotable/twotable-backend/internal/clients/qdrant"
	"github.com/twotable/twotable-backend/internal/clients/routing"
	"github.com/twotable/twotable-backend/internal/data/repos/embeddings"
	"github.com/twotable/twotable-backend/internal/pkg/logger"
	"github.com/twotable/twotable-backend/internal/services"
	"github.com/twotable/twotable-backend/internal/utils"
)

// Provider variants are resolved once at startup. An unknown provider
// name is a configuration bug and fails the boot.

func resolveEmbeddingProvider(log *logger.Logger, cfg Config) (openai.Client, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return openai.NewClient(log)
	case "ollama":
		return ollama.NewClient(log)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

func resolveRoutingProvider(log *logger.Logger, cfg Config) (routing.Provider, error) {
	switch cfg.RoutingProvider {
	case "tomtom":
		return routing.NewTomTom(log, cfg.RoutingAPIKey)
	case "openrouteservice":
		return routing.NewOpenRouteService(log, cfg.RoutingAPIKey)
	case "mapbox":
		return routing.NewMapbox(log, cfg.RoutingAPIKey)
	default:
		return nil, fmt.Errorf("unknown routing provider %q", cfg.RoutingProvider)
	}
}

func resolveGeocodingProvider(log *logger.Logger, cfg Config) (geocoding.Provider, error) {
	switch cfg.GeocodingProvider {
	case "tomtom":
		return geocoding.NewTomTom(log, cfg.GeocodingAPIKey)
	case "opencage":
		return geocoding.NewOpenCage(log, cfg.GeocodingAPIKey)
	case "mapbox":
		return geocoding.NewMapbox(log, cfg.GeocodingAPIKey)
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", cfg.GeocodingProvider)
	}
}

func resolveVectorStore(db *gorm.DB, log *logger.Logger, cfg Config, venueEmbeddings embeddings.VenueEmbeddingRepo) (pinecone.VectorStore, error) {
	switch cfg.VectorProvider {
	case "local":
		log.Info("Selecting vector store provider", "provider", "local")
		return services.NewLocalVectorStore(db, log, venueEmbeddings), nil

	case "pinecone":
		log.Info("Selecting vector store provider", "provider", "pinecone")
		pc, err := pinecone.New(log, pinecone.Config{
			APIKey:     strings.TrimSpace(os.Getenv("PINECONE_API_KEY")),
			APIVersion: strings.TrimSpace(os.Getenv("PINECONE_API_VERSION")),
			BaseURL:    strings.TrimSpace(os.Getenv("PINECONE_BASE_URL")),
			Timeout:    30 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("pinecone client init: %w", err)
		}
		vs, err := pinecone.NewVectorStore(log, pc)
		if err != nil {
			return nil, fmt.Errorf("pinecone vector store init: %w", err)
		}
		return vs, nil

	case "qdrant":
		log.Info("Selecting vector store provider", "provider", "qdrant",
			"url", os.Getenv("QDRANT_URL"),
			"collection", os.Getenv("QDRANT_COLLECTION"),
		)
		vs, err := qdrant.NewVectorStore(log, qdrant.Config{
			URL:        strings.TrimSpace(os.Getenv("QDRANT_URL")),
			APIKey:     strings.TrimSpace(os.Getenv("QDRANT_API_KEY")),
			Collection: strings.TrimSpace(os.Getenv("QDRANT_COLLECTION")),
			VectorDim:  utils.GetEnvAsInt("QDRANT_VECTOR_DIM", 0, log),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant vector store init: %w", err)
		}
		return vs, nil

	default:
		return nil, fmt.Errorf("unknown vector provider %q", cfg.VectorProvider)
	}
}
