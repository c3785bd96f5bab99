package search

import (
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// Weights holds the per-field match weights and bonuses. The relative
// ordering title > location > description > category is the contract; the
// exact numbers are tuning policy.
type Weights struct {
	Title       int
	Location    int
	Description int
	Category    int

	CategoryBonus int
	RegionBonus   int

	SeverityBonus map[models.Severity]int

	RecencyDay1 int
	RecencyDay3 int
	RecencyDay7 int
}

func DefaultWeights() Weights {
	return Weights{
		Title:         5,
		Location:      4,
		Description:   3,
		Category:      2,
		CategoryBonus: 10,
		RegionBonus:   8,
		SeverityBonus: map[models.Severity]int{
			models.SeverityCritical: 4,
			models.SeverityHigh:     3,
			models.SeverityMedium:   2,
			models.SeverityLow:      1,
		},
		RecencyDay1: 5,
		RecencyDay3: 3,
		RecencyDay7: 1,
	}
}

// Engine ranks cached records against a free-text query with an additive
// keyword heuristic. It is not a statistical ranker.
type Engine struct {
	weights Weights
	clock   clockwork.Clock
}

func NewEngine(weights Weights, clock clockwork.Clock) *Engine {
	return &Engine{weights: weights, clock: clock}
}

type scored struct {
	rec   models.DisasterRecord
	score int
	index int
}

// Search returns the top maxResults records by score, descending. Ties keep
// corpus order. Records scoring zero are excluded.
func (e *Engine) Search(query string, corpus []models.DisasterRecord, maxResults int) []models.DisasterRecord {
	tokens := expandQuery(query)
	if len(tokens) == 0 {
		return nil
	}

	now := e.clock.Now().Unix()
	urgent := containsAnyToken(tokens, urgencyWords)
	recent := containsAnyToken(tokens, recencyWords)

	var matches []scored
	for i, rec := range corpus {
		score := e.scoreRecord(rec, tokens, urgent, recent, now)
		if score > 0 {
			matches = append(matches, scored{rec: rec, score: score, index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	out := make([]models.DisasterRecord, len(matches))
	for i, m := range matches {
		out[i] = m.rec
	}
	return out
}

func (e *Engine) scoreRecord(rec models.DisasterRecord, tokens []string, urgent, recent bool, now int64) int {
	title := strings.ToLower(rec.Title)
	description := strings.ToLower(rec.Description)
	location := strings.ToLower(rec.Location)
	category := strings.ToLower(string(rec.Category))

	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += e.weights.Title
		}
		if strings.Contains(location, tok) {
			score += e.weights.Location
		}
		if strings.Contains(description, tok) {
			score += e.weights.Description
		}
		if strings.Contains(category, tok) {
			score += e.weights.Category
		}
	}

	for _, tok := range tokens {
		if cat, ok := categoryBonuses[tok]; ok && cat == rec.Category {
			score += e.weights.CategoryBonus
		}
	}

	for _, tok := range tokens {
		if locKeywords, ok := regionBonuses[tok]; ok {
			for _, kw := range locKeywords {
				if strings.Contains(location, kw) {
					score += e.weights.RegionBonus
					break
				}
			}
		}
	}

	if urgent {
		score += e.weights.SeverityBonus[rec.Severity]
	}

	if recent {
		daysAgo := float64(now-rec.Timestamp) / float64(24*time.Hour/time.Second)
		switch {
		case daysAgo <= 1:
			score += e.weights.RecencyDay1
		case daysAgo <= 3:
			score += e.weights.RecencyDay3
		case daysAgo <= 7:
			score += e.weights.RecencyDay7
		}
	}

	return score
}

func containsAnyToken(tokens []string, set map[string]struct{}) bool {
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			return true
		}
	}
	return false
}
