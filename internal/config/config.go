package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Store     StoreConfig
	Logging   LoggingConfig
	Gemini    GeminiConfig
	Places    PlacesConfig
	Responder ResponderConfig
}

type GRPCConfig struct {
	Port int
}

type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
}

type StoreConfig struct {
	Backend string // "sqlite" or "memory"
	Path    string
}

type LoggingConfig struct {
	Level string
}

type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string // classification
	SearchModel string // locality + knowledge search
	Timeout     time.Duration
}

type PlacesConfig struct {
	APIKey        string
	BaseURL       string // Places API (New)
	MapsBaseURL   string // legacy Maps web services
	RegionCode    string
	RadiusMeters  int
	Timeout       time.Duration
	DetailWorkers int
}

type ResponderConfig struct {
	Limit            int
	DefaultLocality  string
	LocalityCacheTTL time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "sqlite"),
			Path:    getEnv("DB_PATH", "./data/emergency-assist.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			SearchModel: getEnv("GEMINI_SEARCH_MODEL", "gemini-2.0-flash"),
			Timeout:     getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Places: PlacesConfig{
			APIKey:        getEnv("GOOGLE_MAPS_API_KEY", getEnv("VITE_GOOGLE_MAPS_API_KEY", "")),
			BaseURL:       getEnv("PLACES_BASE_URL", "https://places.googleapis.com"),
			MapsBaseURL:   getEnv("MAPS_BASE_URL", ""),
			RegionCode:    getEnv("PLACES_REGION_CODE", "IN"),
			RadiusMeters:  getEnvInt("SEARCH_RADIUS_METERS", 20000),
			Timeout:       getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
			DetailWorkers: getEnvInt("DETAIL_WORKERS", 3),
		},
		Responder: ResponderConfig{
			Limit:            getEnvInt("RESPONDER_LIMIT", 3),
			DefaultLocality:  getEnv("DEFAULT_LOCALITY", "India"),
			LocalityCacheTTL: getEnvDuration("LOCALITY_CACHE_TTL", 24*time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}

	if c.Responder.Limit < 1 || c.Responder.Limit > 10 {
		return fmt.Errorf("responder limit must be between 1 and 10, got %d", c.Responder.Limit)
	}
	if c.Places.RadiusMeters < 1 || c.Places.RadiusMeters > 50000 {
		return fmt.Errorf("search radius must be between 1 and 50000 meters, got %d", c.Places.RadiusMeters)
	}
	if c.Places.DetailWorkers < 1 {
		return fmt.Errorf("detail workers must be at least 1")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
