package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, 7, cfg.Cache.RetentionDays)
	assert.Equal(t, 10*time.Minute, cfg.Cache.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.Sources.FetchTimeout)
	assert.Len(t, cfg.Sources.USGSFeeds, 4)
	assert.True(t, cfg.Sources.GDACSEnabled)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_RETENTION_DAYS", "14")
	t.Setenv("CACHE_REFRESH_INTERVAL", "5m")
	t.Setenv("NEWS_ENABLED", "false")
	t.Setenv("USGS_FEEDS", "https://a.example/feed.geojson, https://b.example/feed.geojson")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 14, cfg.Cache.RetentionDays)
	assert.Equal(t, 5*time.Minute, cfg.Cache.RefreshInterval)
	assert.False(t, cfg.Sources.NewsEnabled)
	assert.Equal(t, []string{"https://a.example/feed.geojson", "https://b.example/feed.geojson"}, cfg.Sources.USGSFeeds)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CACHE_REFRESH_INTERVAL", "soon")
	t.Setenv("GDACS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Cache.RefreshInterval)
	assert.True(t, cfg.Sources.GDACSEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "70000"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"zero retention", map[string]string{"CACHE_RETENTION_DAYS": "0"}},
		{"refresh too fast", map[string]string{"CACHE_REFRESH_INTERVAL": "10s"}},
		{"timeout too short", map[string]string{"SOURCE_FETCH_TIMEOUT": "100ms"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
