package quality

import (
	"regexp"
	"strings"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// Enhancer validates and backfills record fields before they enter the cache.
// A record is never rejected here; failed checks degrade to sentinels.
type Enhancer struct {
	invalidLocation []*regexp.Regexp
}

func NewEnhancer() *Enhancer {
	return &Enhancer{invalidLocation: compile(invalidLocationPatterns)}
}

func compile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile("(?i)"+p))
	}
	return out
}

// Strings that never start a place name: sentence fragments, attributions,
// news-feed boilerplate.
var invalidLocationPatterns = []string{
	`^(However|Meanwhile|According|The|A|An|This|That|It|He|She|They)\s+`,
	`^(January|February|March|April|May|June|July|August|September|October|November|December)`,
	`^[A-Z][a-z]+\s+(said|reported|announced|stated|declared|confirmed)`,
	`^(News|Dawn|BBC|CNN|Reuters|AP|AFP|Bloomberg|Guardian)`,
	`^(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`,
	`^(Today|Yesterday|Tomorrow|Now|Then|Here|There)`,
	`^(Mr|Mrs|Ms|Dr|Prof|President|Minister|Secretary)\s+`,
	`^\d+\s+(people|persons|civilians|residents|victims)`,
	`^(Breaking|Latest|Update|Report|Analysis|Opinion)`,
}

var locationPrefixes = []string{
	"According to", "However,", "Meanwhile,", "The ", "A ", "An ",
	"Breaking:", "Update:", "Latest:", "Report:", "News:",
}

var validLocationShapes = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][a-zA-Z\s]+,\s*[A-Z][a-zA-Z\s]+$`), // City, Country
	regexp.MustCompile(`^[A-Z][a-zA-Z\s]+$`),                     // single place name
}

// CleanLocation validates a raw location string, returning the TBD sentinel
// for anything that does not look like a place name.
func (e *Enhancer) CleanLocation(raw string) string {
	loc := strings.TrimSpace(raw)
	if loc == "" {
		return models.LocationTBD
	}

	for _, re := range e.invalidLocation {
		if re.MatchString(loc) {
			return models.LocationTBD
		}
	}

	for _, prefix := range locationPrefixes {
		if strings.HasPrefix(loc, prefix) {
			loc = strings.TrimSpace(strings.TrimPrefix(loc, prefix))
		}
	}

	if len(loc) < 3 || len(loc) > 100 {
		return models.LocationTBD
	}

	for _, shape := range validLocationShapes {
		if shape.MatchString(loc) {
			return loc
		}
	}
	return models.LocationTBD
}

// Coordinates resolves a cleaned location to gazetteer coordinates. Exact
// match first, then partial match on any comma-separated component, checked
// in sorted key order. Unknown locations get the invalid zero value.
func (e *Enhancer) Coordinates(location string) models.Coordinates {
	if location == "" || location == models.LocationTBD {
		return models.Coordinates{}
	}

	if c, ok := gazetteer[location]; ok {
		return models.NewCoordinates(c.lat, c.lng)
	}

	lower := strings.ToLower(location)
	for _, key := range gazetteerKeys {
		for _, part := range strings.Split(key, ", ") {
			if strings.Contains(lower, strings.ToLower(part)) {
				c := gazetteer[key]
				return models.NewCoordinates(c.lat, c.lng)
			}
		}
	}
	return models.Coordinates{}
}

// Enhance runs the full quality pass on one record: location cleanup,
// coordinate backfill, impact-estimate backfill, quality score.
func (e *Enhancer) Enhance(rec models.DisasterRecord) models.DisasterRecord {
	rec.Location = e.CleanLocation(rec.Location)
	if !rec.Coordinates.Valid {
		rec.Coordinates = e.Coordinates(rec.Location)
	}
	if rec.DamageEstimate == "" {
		rec.DamageEstimate = damageFromSeverity(rec.Severity)
	}
	if rec.AffectedPeople == 0 {
		rec.AffectedPeople = peopleFromSeverity(rec.Severity)
	}
	rec.QualityScore = e.Score(rec.Title, rec.Location, rec.Description, rec.Coordinates)
	return rec
}

func damageFromSeverity(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return "Over $1 billion"
	case models.SeverityHigh:
		return "$100 million - $1 billion"
	case models.SeverityMedium:
		return "$10 million - $100 million"
	default:
		return "Under $10 million"
	}
}

func peopleFromSeverity(s models.Severity) int64 {
	switch s {
	case models.SeverityCritical:
		return 100000
	case models.SeverityHigh:
		return 50000
	case models.SeverityMedium:
		return 10000
	default:
		return 1000
	}
}
