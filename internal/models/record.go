package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities for comparisons and tiered bonuses.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

type Category string

const (
	CategoryEarthquake   Category = "EARTHQUAKE"
	CategoryFlood        Category = "FLOOD"
	CategoryWildfire     Category = "WILDFIRE"
	CategoryHurricane    Category = "HURRICANE"
	CategoryVolcano      Category = "VOLCANO"
	CategoryTsunami      Category = "TSUNAMI"
	CategoryLandslide    Category = "LANDSLIDE"
	CategoryDrought      Category = "DROUGHT"
	CategoryTornado      Category = "TORNADO"
	CategoryConflict     Category = "CONFLICT"
	CategoryHumanitarian Category = "HUMANITARIAN"
	CategoryIndustrial   Category = "INDUSTRIAL"
	CategoryOther        Category = "OTHER"
)

// LocationTBD is the sentinel for a location that could not be validated.
const LocationTBD = "Location TBD"

// Coordinates is an optional lat/lng pair. The zero value means unknown;
// callers must check Valid instead of comparing against (0,0).
type Coordinates struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Valid bool    `json:"-"`
}

// NewCoordinates returns a valid coordinate pair.
func NewCoordinates(lat, lng float64) Coordinates {
	return Coordinates{Lat: lat, Lng: lng, Valid: true}
}

// UnmarshalJSON restores Valid from the persisted {lat,lng} form, where the
// origin doubles as the unknown sentinel.
func (c *Coordinates) UnmarshalJSON(b []byte) error {
	var aux struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Lat = aux.Lat
	c.Lng = aux.Lng
	c.Valid = aux.Lat != 0 || aux.Lng != 0
	return nil
}

// DisasterRecord is the normalized shape every source adapter produces.
// Timestamp is the event time in epoch seconds, never the ingestion time.
type DisasterRecord struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Location       string      `json:"location"`
	Severity       Severity    `json:"severity"`
	Category       Category    `json:"category"`
	Timestamp      int64       `json:"timestamp"`
	Source         string      `json:"source"`
	Confidence     float64     `json:"confidence"`
	AffectedPeople int64       `json:"affected_people,omitempty"`
	DamageEstimate string      `json:"damage_estimate,omitempty"`
	Coordinates    Coordinates `json:"coordinates"`
	QualityScore   float64     `json:"quality_score,omitempty"`
}

// DeriveID builds a stable record id from the adapter prefix and a content
// key, so re-fetching the same source event yields the same id.
func DeriveID(prefix, content string) string {
	sum := sha256.Sum256([]byte(content))
	return prefix + "_" + hex.EncodeToString(sum[:])[:8]
}
