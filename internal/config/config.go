package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Cache   CacheConfig
	Archive ArchiveConfig
	Worker  WorkerConfig
	Sources SourcesConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
}

type CacheConfig struct {
	Dir             string
	RetentionDays   int
	RefreshInterval time.Duration
}

type ArchiveConfig struct {
	Path string
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourcesConfig struct {
	FetchTimeout time.Duration

	USGSEnabled bool
	USGSFeeds   []string

	ReliefWebEnabled bool
	ReliefWebURL     string

	GDACSEnabled bool
	GDACSURL     string

	NewsEnabled bool
	NewsFeeds   []string

	LLMEnabled bool
	LLMURL     string
	LLMModel   string
	LLMAPIKey  string
}

type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

var defaultUSGSFeeds = []string{
	"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_week.geojson",
	"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_month.geojson",
	"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/4.5_week.geojson",
	"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/4.5_month.geojson",
}

var defaultNewsFeeds = []string{
	"http://feeds.bbci.co.uk/news/world/rss.xml",
	"https://www.aljazeera.com/xml/rss/all.xml",
	"https://news.un.org/en/rss.xml",
	"https://reliefweb.int/rss.xml",
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Cache: CacheConfig{
			Dir:             getEnv("CACHE_DIR", "./data"),
			RetentionDays:   getEnvInt("CACHE_RETENTION_DAYS", 7),
			RefreshInterval: getEnvDuration("CACHE_REFRESH_INTERVAL", 10*time.Minute),
		},
		Archive: ArchiveConfig{
			Path: getEnv("ARCHIVE_PATH", "./data/crisis-archive.db"),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 64),
		},
		Sources: SourcesConfig{
			FetchTimeout:     getEnvDuration("SOURCE_FETCH_TIMEOUT", 30*time.Second),
			USGSEnabled:      getEnvBool("USGS_ENABLED", true),
			USGSFeeds:        getEnvList("USGS_FEEDS", defaultUSGSFeeds),
			ReliefWebEnabled: getEnvBool("RELIEFWEB_ENABLED", true),
			ReliefWebURL:     getEnv("RELIEFWEB_URL", "https://api.reliefweb.int/v1/disasters"),
			GDACSEnabled:     getEnvBool("GDACS_ENABLED", true),
			GDACSURL:         getEnv("GDACS_URL", "https://www.gdacs.org/xml/rss.xml"),
			NewsEnabled:      getEnvBool("NEWS_ENABLED", true),
			NewsFeeds:        getEnvList("NEWS_FEEDS", defaultNewsFeeds),
			LLMEnabled:       getEnvBool("LLM_ENABLED", true),
			LLMURL:           getEnv("LLM_URL", "https://api.openai.com/v1/chat/completions"),
			LLMModel:         getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
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

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Cache.RetentionDays < 1 {
		return fmt.Errorf("cache retention must be at least 1 day")
	}
	if c.Cache.RefreshInterval < time.Minute {
		return fmt.Errorf("cache refresh interval must be at least 1 minute")
	}
	if c.Sources.FetchTimeout < time.Second {
		return fmt.Errorf("source fetch timeout must be at least 1 second")
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
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

func getEnvList(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
