package quality

import (
	"strings"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// Topics that disqualify a news item outright.
var excludeKeywords = []string{
	"political crisis", "economic crisis", "trade dispute", "election results",
	"court decision", "business news", "stock market", "parliament", "senate",
	"minister", "president", "prime minister", "government", "policy",
	"budget", "tax", "law", "legal", "judicial", "constitutional",

	"sports", "entertainment", "celebrity", "movie", "music", "fashion",
	"technology", "software", "app", "website", "social media", "internet",
	"cryptocurrency", "bitcoin", "blockchain", "nft",

	"meeting", "conference", "summit", "visit", "tour", "ceremony",
	"anniversary", "celebration", "festival", "award", "prize", "competition",
	"interview", "statement", "announcement", "launch", "opening",
}

// Phrases that identify a disaster in context, not just a bare keyword.
var disasterContextPhrases = []string{
	"earthquake magnitude", "earthquake strikes", "earthquake hits", "seismic activity",
	"wildfire burns", "wildfire spreads", "fire destroys", "forest fire",
	"flood waters", "flooding affects", "flood victims", "flash flood",
	"hurricane winds", "hurricane makes landfall", "storm surge", "tropical storm",
	"tornado touches down", "tornado destroys", "twister",
	"volcano erupts", "volcanic ash", "lava flows", "volcanic activity",
	"landslide buries", "mudslide hits", "rockslide",
	"drought affects", "water shortage", "severe drought",
	"blizzard hits", "snowstorm", "ice storm",

	"civilians killed", "civilian casualties", "bombing attack", "bomb blast",
	"airstrike hits", "missile strike", "explosion kills", "terrorist attack",
	"refugee crisis", "displaced persons", "humanitarian aid", "humanitarian crisis",
	"evacuation ordered", "emergency declared", "state of emergency",
	"casualties reported", "people killed", "people injured",
	"rescue operations", "search and rescue", "emergency response",
	"disaster zone", "affected area", "damage assessment",

	"building collapse", "bridge collapse", "dam failure", "power outage",
	"train derailment", "plane crash", "ship sinking", "oil spill",
	"chemical leak", "gas explosion", "industrial accident",

	"disease outbreak", "epidemic", "pandemic", "health emergency",
	"contamination", "poisoning", "radiation leak",
}

// Generic crisis indicators; at least two distinct hits are required when no
// context phrase matched.
var crisisIndicators = []string{
	"killed", "dead", "casualties", "injured", "wounded", "missing",
	"destroyed", "damaged", "collapsed", "evacuated", "displaced",
	"emergency", "crisis", "disaster", "catastrophe", "tragedy",
}

// IsActualDisaster is the noise gate for the news adapter: exclusion list
// first, then context phrases, then the indicator count fallback.
func (e *Enhancer) IsActualDisaster(title, description string) bool {
	text := strings.ToLower(title + " " + description)

	for _, kw := range excludeKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}

	for _, phrase := range disasterContextPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	count := 0
	for _, indicator := range crisisIndicators {
		if strings.Contains(text, indicator) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// Score rates a record's completeness in [0,1]: title 30%, location 25%,
// coordinates 25%, description 20%.
func (e *Enhancer) Score(title, location, description string, coords models.Coordinates) float64 {
	var titleScore float64
	if len(title) > 10 {
		titleScore += 0.5
	}
	if e.IsActualDisaster(title, description) {
		titleScore += 0.5
	}

	var locationScore float64
	if location != "" && location != models.LocationTBD {
		locationScore += 0.5
		for _, shape := range validLocationShapes {
			if shape.MatchString(location) {
				locationScore += 0.5
				break
			}
		}
	}

	var coordScore float64
	if coords.Valid {
		coordScore = 1.0
	}

	var descScore float64
	if len(description) > 20 {
		descScore += 0.5
	}
	if len(description) > 100 {
		descScore += 0.5
	}

	return titleScore*0.30 + locationScore*0.25 + coordScore*0.25 + descScore*0.20
}
