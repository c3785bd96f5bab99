package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/archive"
	"github.com/crisislab/crisis-monitor/internal/cache"
	"github.com/crisislab/crisis-monitor/internal/ingestion"
	"github.com/crisislab/crisis-monitor/internal/models"
	"github.com/crisislab/crisis-monitor/internal/quality"
	"github.com/crisislab/crisis-monitor/internal/search"
	"github.com/crisislab/crisis-monitor/internal/service"
)

type stubSource struct {
	records []models.DisasterRecord
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error) {
	return s.records, nil
}

func seedRecords(clock clockwork.Clock) []models.DisasterRecord {
	now := clock.Now().Unix()
	return []models.DisasterRecord{
		{
			ID:          "usgs_quake1",
			Title:       "Magnitude 7.1 Earthquake Offshore",
			Description: "Strong earthquake recorded off the eastern coast",
			Location:    "Tokyo, Japan",
			Severity:    models.SeverityCritical,
			Category:    models.CategoryEarthquake,
			Timestamp:   now - 3600,
			Source:      "USGS",
			Confidence:  0.95,
			Coordinates: models.NewCoordinates(35.6762, 139.6503),
		},
		{
			ID:          "news_flood1",
			Title:       "Severe Flooding Hits Coastal Towns",
			Description: "Flood waters rising after days of rain",
			Location:    "Unknown Region Somewhere",
			Severity:    models.SeverityHigh,
			Category:    models.CategoryFlood,
			Timestamp:   now - 7200,
			Source:      "News-BBC",
			Confidence:  0.75,
		},
	}
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	store := cache.NewStore(t.TempDir(), 7, clock)
	if err := store.Load(); err != nil {
		t.Fatalf("load cache: %v", err)
	}
	repo, err := archive.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	enhancer := quality.NewEnhancer()
	src := &stubSource{records: seedRecords(clock)}

	svc := service.New(service.Options{
		Store:           store,
		Repo:            repo,
		Aggregator:      ingestion.NewAggregator([]ingestion.Source{src}, enhancer, clock, 5*time.Second, nil),
		Engine:          search.NewEngine(search.DefaultWeights(), clock),
		Clock:           clock,
		RetentionDays:   7,
		RefreshInterval: time.Hour,
		WorkerCount:     1,
		WorkerBuffer:    16,
	})

	// Populate the cache without starting the background loop.
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(svc)
	handler.RegisterRoutes(router)
	return router
}

func TestInitialLoad(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/initial-load", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Success   bool                    `json:"success"`
		Disasters []models.DisasterRecord `json:"disasters"`
		Total     int                     `json:"total"`
		LoadedAt  string                  `json:"loaded_at"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if !resp.Success {
		t.Error("expected success true")
	}
	if resp.Total != 2 || len(resp.Disasters) != 2 {
		t.Errorf("expected 2 disasters, got total=%d len=%d", resp.Total, len(resp.Disasters))
	}
	// Newest first.
	if resp.Disasters[0].ID != "usgs_quake1" {
		t.Errorf("expected newest record first, got %s", resp.Disasters[0].ID)
	}
	if resp.LoadedAt == "" {
		t.Error("expected loaded_at timestamp")
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	body, _ := json.Marshal(map[string]any{"query": "earthquake japan", "max_results": 5})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Success   bool                    `json:"success"`
		Disasters []models.DisasterRecord `json:"disasters"`
		Query     string                  `json:"query"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(resp.Disasters) == 0 || resp.Disasters[0].ID != "usgs_quake1" {
		t.Errorf("expected earthquake ranked first, got %+v", resp.Disasters)
	}
	if resp.Query != "earthquake japan" {
		t.Errorf("expected query echoed back, got %q", resp.Query)
	}
}

func TestSearchEndpoint_BadRequest(t *testing.T) {
	router := setupTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{nope"},
		{"missing query", `{"max_results": 5}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/search", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestAgentQuery(t *testing.T) {
	router := setupTestRouter(t)

	body, _ := json.Marshal(map[string]any{"query": "flood"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/agent/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Disasters []models.DisasterRecord `json:"disasters"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Disasters) != 1 || resp.Disasters[0].ID != "news_flood1" {
		t.Errorf("expected flood record, got %+v", resp.Disasters)
	}
}

func TestExportEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/disasters/usgs_quake1/export", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Success bool           `json:"success"`
		Record  map[string]any `json:"record"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Record["name"] != "Magnitude 7.1 Earthquake Offshore" {
		t.Errorf("unexpected export name %v", resp.Record["name"])
	}
	if resp.Record["external_source"] != "USGS" {
		t.Errorf("unexpected export source %v", resp.Record["external_source"])
	}
}

func TestExportEndpoint_NotFound(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/disasters/nope/export", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGeoJSON_SkipsInvalidCoordinates(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/disasters.geojson", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("unexpected type %s", fc.Type)
	}
	// The quake has coordinates, the flood does not.
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	coords := fc.Features[0].Geometry.Coordinates
	if len(coords) != 2 || coords[0] != 139.6503 || coords[1] != 35.6762 {
		t.Errorf("unexpected coordinates %v", coords)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/stats", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Success bool        `json:"success"`
		Stats   cache.Stats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Stats.TotalDisasters != 2 {
		t.Errorf("expected 2 total disasters, got %d", resp.Stats.TotalDisasters)
	}
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	limited := false
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("expected rate limiter to reject burst traffic")
	}
}
