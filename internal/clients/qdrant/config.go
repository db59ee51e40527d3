package qdrant

import (
	"fmt"
	"net/url"
	"strings"
)

type ConfigErrorCode string

const (
	ConfigErrorMissingURL        ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL        ConfigErrorCode = "invalid_url"
	ConfigErrorMissingCollection ConfigErrorCode = "missing_collection"
	ConfigErrorInvalidVectorDim  ConfigErrorCode = "invalid_vector_dim"
)

type ConfigError struct {
	Code    ConfigErrorCode
	Message string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "qdrant config error"
	}
	return fmt.Sprintf("qdrant config error (%s): %s", e.Code, e.Message)
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	VectorDim  int
}

func ValidateConfig(cfg Config) error {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		return &ConfigError{Code: ConfigErrorMissingURL, Message: "QDRANT_URL is required"}
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &ConfigError{Code: ConfigErrorInvalidURL, Message: fmt.Sprintf("cannot parse %q", u)}
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return &ConfigError{Code: ConfigErrorMissingCollection, Message: "QDRANT_COLLECTION is required"}
	}
	if cfg.VectorDim < 0 {
		return &ConfigError{Code: ConfigErrorInvalidVectorDim, Message: fmt.Sprintf("vector dim %d", cfg.VectorDim)}
	}
	return nil
}
