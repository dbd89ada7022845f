package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"afisha/internal/cache"
	"afisha/internal/database"
	"afisha/internal/external"
	"afisha/internal/messaging"
	"afisha/internal/search"
)

// Config is the main API service configuration.
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	// Optional integrations are toggled here. A disabled integration leaves
	// the corresponding client nil.
	NATSEnabled   bool
	SearchEnabled bool
	CacheEnabled  bool
	StatsEnabled  bool

	Database database.Config
	NATS     messaging.Config
	Search   search.Config
	Cache    cache.Config
	Stats    external.StatsConfig
}

// Load reads the API service configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "release"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		NATSEnabled:   getEnv("NATS_ENABLED", "true") == "true",
		SearchEnabled: getEnv("SEARCH_ENABLED", "false") == "true",
		CacheEnabled:  getEnv("CACHE_ENABLED", "false") == "true",
		StatsEnabled:  getEnv("STATS_ENABLED", "true") == "true",

		Database: loadDatabase("afisha"),

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "afisha"),
			ClientID:  getEnv("NATS_CLIENT_ID", "afisha-api"),
		},

		Search: search.Config{
			Addresses: strings.Split(getEnv("ELASTICSEARCH_ADDRESSES", "http://localhost:9200"), ","),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:     getEnv("ELASTICSEARCH_INDEX", "events"),
		},

		Cache: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			TTLSec:   getEnvInt("CACHE_TTL_SEC", 30),
		},

		Stats: external.StatsConfig{
			BaseURL: getEnv("STATS_SERVICE_URL", "http://localhost:9090"),
			App:     getEnv("STATS_APP_NAME", "afisha-api"),
			Timeout: time.Duration(getEnvInt("STATS_TIMEOUT_SEC", 5)) * time.Second,
		},
	}
}

// StatsServiceConfig is the configuration of the stats service.
type StatsServiceConfig struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	Database database.Config
}

// LoadStats reads the stats service configuration from environment variables.
func LoadStats() *StatsServiceConfig {
	return &StatsServiceConfig{
		Port:      getEnv("PORT", "9090"),
		GinMode:   getEnv("GIN_MODE", "release"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Database: loadDatabase("afisha_stats"),
	}
}

// IndexerConfig is the configuration of the search indexer consumer.
type IndexerConfig struct {
	LogLevel  string
	LogFormat string

	Database database.Config
	NATS     messaging.Config
	Search   search.Config
}

// LoadIndexer reads the indexer configuration from environment variables.
func LoadIndexer() *IndexerConfig {
	return &IndexerConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Database: loadDatabase("afisha"),

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "afisha"),
			ClientID:  getEnv("NATS_CLIENT_ID", "afisha-indexer"),
		},

		Search: search.Config{
			Addresses: strings.Split(getEnv("ELASTICSEARCH_ADDRESSES", "http://localhost:9200"), ","),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:     getEnv("ELASTICSEARCH_INDEX", "events"),
		},
	}
}

func loadDatabase(defaultName string) database.Config {
	return database.Config{
		Host:               getEnv("DB_HOST", "localhost"),
		Port:               getEnvInt("DB_PORT", 5432),
		User:               getEnv("DB_USER", "afisha"),
		Password:           getEnv("DB_PASSWORD", "afisha"),
		DBName:             getEnv("DB_NAME", defaultName),
		SSLMode:            getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
		ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
