package api

import (
	"github.com/crisislab/crisis-monitor/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON converts records to a point FeatureCollection. Records without
// usable coordinates are skipped rather than plotted at (0, 0).
func toGeoJSON(records []models.DisasterRecord) FeatureCollection {
	features := make([]Feature, 0, len(records))

	for _, rec := range records {
		if !rec.Coordinates.Valid {
			continue
		}

		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{rec.Coordinates.Lng, rec.Coordinates.Lat},
			},
			Properties: map[string]any{
				"id":          rec.ID,
				"title":       rec.Title,
				"description": rec.Description,
				"location":    rec.Location,
				"severity":    rec.Severity,
				"category":    rec.Category,
				"source":      rec.Source,
				"confidence":  rec.Confidence,
				"timestamp":   rec.Timestamp,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
