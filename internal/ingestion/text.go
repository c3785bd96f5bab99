package ingestion

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crisislab/crisis-monitor/internal/models"
)

const maxDescriptionLen = 200

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// cleanDescription strips markup and truncates to a bounded length.
// Truncation counts runes so multibyte text is never split mid-character.
func cleanDescription(s string) string {
	if s == "" {
		return "No description available"
	}
	s = strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
	if runes := []rune(s); len(runes) > maxDescriptionLen {
		s = string(runes[:maxDescriptionLen-3]) + "..."
	}
	return s
}

var severeWords = map[models.Severity][]string{
	models.SeverityCritical: {"catastrophic", "devastating", "major", "massive", "deadly", "fatal"},
	models.SeverityHigh:     {"severe", "significant", "serious", "dangerous", "critical"},
	models.SeverityMedium:   {"moderate", "considerable", "notable"},
}

// severityFromText infers severity from free text, defaulting to LOW.
func severityFromText(text string) models.Severity {
	lower := strings.ToLower(text)
	for _, s := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium} {
		for _, w := range severeWords[s] {
			if strings.Contains(lower, w) {
				return s
			}
		}
	}
	return models.SeverityLow
}

var categoryKeywords = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryEarthquake, []string{"earthquake", "quake", "seismic", "tremor"}},
	{models.CategoryWildfire, []string{"wildfire", "forest fire", "blaze", "burn"}},
	{models.CategoryFlood, []string{"flood", "flooding", "deluge", "inundation"}},
	{models.CategoryHurricane, []string{"hurricane", "typhoon", "cyclone", "storm"}},
	{models.CategoryVolcano, []string{"volcano", "volcanic", "eruption", "lava"}},
	{models.CategoryTsunami, []string{"tsunami", "tidal wave"}},
	{models.CategoryLandslide, []string{"landslide", "mudslide", "rockslide"}},
	{models.CategoryTornado, []string{"tornado", "twister"}},
	{models.CategoryDrought, []string{"drought", "water shortage"}},
	{models.CategoryConflict, []string{"war", "conflict", "airstrike", "attack", "bombing", "shelling"}},
	{models.CategoryHumanitarian, []string{"refugee", "displacement", "humanitarian", "famine"}},
	{models.CategoryIndustrial, []string{"chemical leak", "oil spill", "industrial accident", "gas explosion"}},
}

// categorizeText maps free text onto the category taxonomy, OTHER as fallback.
// Assigned once at ingestion and never re-derived.
func categorizeText(text string) models.Category {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.category
			}
		}
	}
	return models.CategoryOther
}

var peopleCountRes = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:,\d+)*)\s+(?:people|persons|residents|evacuated|affected|displaced)`),
	regexp.MustCompile(`(\d+(?:,\d+)*)\s+(?:dead|killed|casualties|injured|missing)`),
}

// estimatePeopleFromText looks for "N people"-shaped counts in free text.
// Returns 0 when nothing matches.
func estimatePeopleFromText(text string) int64 {
	lower := strings.ToLower(text)
	for _, re := range peopleCountRes {
		if m := re.FindStringSubmatch(lower); m != nil {
			n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

var locationShapeRes = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`),
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(?:in|near)\s+([A-Z][a-z]+)\b`),
}

var knownCountries = []string{
	"Afghanistan", "Argentina", "Australia", "Bangladesh", "Brazil", "Canada",
	"Chile", "China", "Colombia", "Ecuador", "Egypt", "Ethiopia", "France",
	"Germany", "Greece", "India", "Indonesia", "Iran", "Iraq", "Israel",
	"Italy", "Japan", "Kenya", "Lebanon", "Malaysia", "Mexico", "Morocco",
	"Myanmar", "Nepal", "New Zealand", "Nigeria", "Pakistan", "Peru",
	"Philippines", "Russia", "South Korea", "Spain", "Sri Lanka", "Sudan",
	"Syria", "Taiwan", "Thailand", "Turkey", "Ukraine", "United Kingdom",
	"United States", "Vietnam", "Yemen",
}

// extractLocation pulls a place name out of free text: "City, Country" and
// "Place in Country" shapes first, then a country-name scan.
func extractLocation(text string) string {
	for _, re := range locationShapeRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1] + ", " + m[2]
		}
	}

	lower := strings.ToLower(text)
	for _, country := range knownCountries {
		if strings.Contains(lower, strings.ToLower(country)) {
			return country
		}
	}
	return models.LocationTBD
}
