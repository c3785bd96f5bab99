package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/crisislab/crisis-monitor/internal/models"
)

const usgsMagnitudeFloor = 4.0

// USGSSource polls a fixed set of earthquake feed variants and keeps events
// at or above the magnitude floor.
type USGSSource struct {
	feeds  []string
	client *http.Client
}

func NewUSGSSource(feeds []string, timeout time.Duration) *USGSSource {
	return &USGSSource{
		feeds:  feeds,
		client: newHTTPClient(timeout),
	}
}

func (s *USGSSource) Name() string { return "usgs" }

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}

type usgsProperties struct {
	Mag   float64 `json:"mag"`
	Place string  `json:"place"`
	Time  int64   `json:"time"` // unix millis
	Title string  `json:"title"`
}

type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

func (s *USGSSource) Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error) {
	var records []models.DisasterRecord
	var lastErr error

	// The feed variants overlap; dedup downstream collapses repeats because
	// the ids are content-derived.
	for _, url := range s.feeds {
		feed, err := s.fetchFeed(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		records = append(records, feed...)
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}

func (s *USGSSource) fetchFeed(ctx context.Context, url string) ([]models.DisasterRecord, error) {
	req, err := newGetRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	records := make([]models.DisasterRecord, 0, len(data.Features))
	for _, f := range data.Features {
		if f.Properties.Mag < usgsMagnitudeFloor || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		records = append(records, s.toRecord(f))
	}
	return records, nil
}

func (s *USGSSource) toRecord(f usgsFeature) models.DisasterRecord {
	mag := f.Properties.Mag
	return models.DisasterRecord{
		ID:             models.DeriveID("usgs", f.ID),
		Title:          fmt.Sprintf("Magnitude %.1f Earthquake", mag),
		Description:    cleanDescription(f.Properties.Title),
		Location:       cleanPlace(f.Properties.Place),
		Severity:       MagnitudeSeverity(mag),
		Category:       models.CategoryEarthquake,
		Timestamp:      f.Properties.Time / 1000,
		Source:         "USGS",
		Confidence:     0.95,
		AffectedPeople: magnitudeAffected(mag),
		Coordinates:    models.NewCoordinates(f.Geometry.Coordinates[1], f.Geometry.Coordinates[0]),
	}
}

// MagnitudeSeverity maps Richter magnitude to severity. Boundaries are
// inclusive on the higher tier.
func MagnitudeSeverity(mag float64) models.Severity {
	switch {
	case mag >= 7.0:
		return models.SeverityCritical
	case mag >= 6.0:
		return models.SeverityHigh
	case mag >= 5.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// magnitudeAffected gives a rough affected-population estimate, piecewise
// linear in magnitude across the same tiers as the severity mapping.
func magnitudeAffected(mag float64) int64 {
	switch {
	case mag >= 7.0:
		return int64(mag * 50000)
	case mag >= 6.0:
		return int64(mag * 10000)
	case mag >= 5.0:
		return int64(mag * 2000)
	default:
		return int64(mag * 500)
	}
}

var placeDistanceRe = regexp.MustCompile(`^\d+(?:\.\d+)?\s?km\s+[NSEW]+\s+of\s+`)

// cleanPlace strips the "123km NE of" prefix USGS puts on place strings.
func cleanPlace(place string) string {
	if place == "" {
		return models.LocationTBD
	}
	return strings.TrimSpace(placeDistanceRe.ReplaceAllString(place, ""))
}
