package search

import (
	"strings"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// koreanMappings expands Korean query tokens to their English synonyms.
// Tokens in languages outside this table get no expansion, which means zero
// score contribution rather than an error.
var koreanMappings = map[string][]string{
	"지진":    {"earthquake", "seismic"},
	"홍수":    {"flood", "flooding"},
	"산불":    {"fire", "wildfire"},
	"태풍":    {"hurricane", "typhoon", "cyclone"},
	"화산":    {"volcano", "volcanic"},
	"분쟁":    {"war", "conflict", "attack"},
	"재해":    {"disaster", "emergency"},
	"재난":    {"disaster", "catastrophe"},
	"일본":    {"japan", "japanese"},
	"중국":    {"china", "chinese"},
	"미국":    {"usa", "america", "united states"},
	"인도네시아": {"indonesia", "indonesian"},
	"필리핀":   {"philippines", "philippine"},
	"방글라데시": {"bangladesh"},
	"최근":    {"recent", "latest"},
	"오늘":    {"today", "current"},
	"어제":    {"yesterday"},
	"심각한":   {"severe", "critical", "major"},
	"큰":     {"large", "big", "major"},
}

// categoryBonuses maps a query keyword to the category it names.
var categoryBonuses = map[string]models.Category{
	"earthquake": models.CategoryEarthquake,
	"seismic":    models.CategoryEarthquake,
	"flood":      models.CategoryFlood,
	"flooding":   models.CategoryFlood,
	"fire":       models.CategoryWildfire,
	"wildfire":   models.CategoryWildfire,
	"hurricane":  models.CategoryHurricane,
	"typhoon":    models.CategoryHurricane,
	"cyclone":    models.CategoryHurricane,
	"volcano":    models.CategoryVolcano,
	"volcanic":   models.CategoryVolcano,
	"tsunami":    models.CategoryTsunami,
	"landslide":  models.CategoryLandslide,
	"drought":    models.CategoryDrought,
	"tornado":    models.CategoryTornado,
	"conflict":   models.CategoryConflict,
	"war":        models.CategoryConflict,
	"attack":     models.CategoryConflict,
}

// regionBonuses maps a region keyword to location substrings that identify
// records from that region.
var regionBonuses = map[string][]string{
	"japan":       {"japan", "japanese", "tokyo"},
	"china":       {"china", "chinese"},
	"usa":         {"united states", "america", "california", "texas"},
	"indonesia":   {"indonesia", "java"},
	"philippines": {"philippines", "visayas"},
	"bangladesh":  {"bangladesh", "sylhet"},
	"turkey":      {"turkey", "istanbul", "ankara"},
	"ukraine":     {"ukraine", "kyiv", "kiev"},
}

var urgencyWords = toSet("severe", "critical", "major", "serious", "심각한", "큰")

var recencyWords = toSet("recent", "latest", "today", "current", "최근", "오늘")

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// expandQuery lowercases, splits on whitespace, drops sub-2-character tokens
// and appends bilingual expansions.
func expandQuery(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	var tokens []string
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
		if synonyms, ok := koreanMappings[f]; ok {
			tokens = append(tokens, synonyms...)
		}
	}
	return tokens
}
