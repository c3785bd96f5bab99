package search

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/models"
)

func testEngine() (*Engine, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	return NewEngine(DefaultWeights(), clock), clock
}

func testCorpus(now int64) []models.DisasterRecord {
	return []models.DisasterRecord{
		{
			ID:          "quake_tokyo",
			Title:       "Magnitude 7.1 Earthquake",
			Description: "Strong earthquake recorded off the coast",
			Location:    "Tokyo, Japan",
			Severity:    models.SeverityCritical,
			Category:    models.CategoryEarthquake,
			Timestamp:   now - 3600,
		},
		{
			ID:          "flood_brazil",
			Title:       "Severe Flooding in Rio Grande do Sul",
			Description: "Rivers overflowed after heavy rain",
			Location:    "Porto Alegre, Brazil",
			Severity:    models.SeverityHigh,
			Category:    models.CategoryFlood,
			Timestamp:   now - 2*24*3600,
		},
		{
			ID:          "fire_greece",
			Title:       "Wildfire Burns Near Athens",
			Description: "Forest fire spreads toward suburbs",
			Location:    "Athens, Greece",
			Severity:    models.SeverityMedium,
			Category:    models.CategoryWildfire,
			Timestamp:   now - 5*24*3600,
		},
	}
}

func TestSearch_RanksEarthquakeQueryFirst(t *testing.T) {
	e, clock := testEngine()
	corpus := testCorpus(clock.Now().Unix())

	results := e.Search("earthquake japan", corpus, 10)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].ID != "quake_tokyo" {
		t.Errorf("expected quake_tokyo first, got %s", results[0].ID)
	}
}

func TestSearch_ZeroScoreExcluded(t *testing.T) {
	e, clock := testEngine()
	corpus := testCorpus(clock.Now().Unix())

	results := e.Search("blizzard antarctica", corpus, 10)
	if len(results) != 0 {
		t.Errorf("expected no matches, got %d", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	e, clock := testEngine()
	corpus := testCorpus(clock.Now().Unix())

	if results := e.Search("", corpus, 10); results != nil {
		t.Errorf("expected nil for empty query, got %v", results)
	}
	// Single-character tokens are dropped too.
	if results := e.Search("a b c", corpus, 10); results != nil {
		t.Errorf("expected nil for sub-2-char tokens, got %v", results)
	}
}

func TestSearch_MaxResults(t *testing.T) {
	e, clock := testEngine()
	corpus := testCorpus(clock.Now().Unix())

	results := e.Search("fire flood earthquake", corpus, 1)
	if len(results) != 1 {
		t.Errorf("expected truncation to 1 result, got %d", len(results))
	}
}

func TestSearch_KoreanExpansion(t *testing.T) {
	e, clock := testEngine()
	corpus := testCorpus(clock.Now().Unix())

	results := e.Search("지진 일본", corpus, 10)
	if len(results) == 0 {
		t.Fatal("expected korean query to expand and match")
	}
	if results[0].ID != "quake_tokyo" {
		t.Errorf("expected quake_tokyo first, got %s", results[0].ID)
	}
}

func TestScoreRecord_FieldWeightOrdering(t *testing.T) {
	e, _ := testEngine()

	titleHit := models.DisasterRecord{Title: "Tsunami warning issued", Category: models.CategoryOther}
	descHit := models.DisasterRecord{Title: "Coastal alert", Description: "tsunami waves expected", Category: models.CategoryOther}

	tokens := []string{"tsunami"}
	now := time.Now().Unix()

	ts := e.scoreRecord(titleHit, tokens, false, false, now)
	ds := e.scoreRecord(descHit, tokens, false, false, now)
	if ts <= ds {
		t.Errorf("expected title match (%d) to outscore description match (%d)", ts, ds)
	}
}

func TestScoreRecord_UrgencyAndRecency(t *testing.T) {
	e, clock := testEngine()
	now := clock.Now().Unix()

	rec := models.DisasterRecord{
		Title:     "Severe Flooding Downtown",
		Category:  models.CategoryFlood,
		Severity:  models.SeverityCritical,
		Timestamp: now - 3600,
	}

	base := e.scoreRecord(rec, []string{"flooding"}, false, false, now)
	urgent := e.scoreRecord(rec, []string{"flooding"}, true, false, now)
	recent := e.scoreRecord(rec, []string{"flooding"}, false, true, now)

	if urgent != base+e.weights.SeverityBonus[models.SeverityCritical] {
		t.Errorf("urgency bonus not applied: base=%d urgent=%d", base, urgent)
	}
	if recent != base+e.weights.RecencyDay1 {
		t.Errorf("recency bonus not applied: base=%d recent=%d", base, recent)
	}
}

func TestScoreRecord_RegionBonus(t *testing.T) {
	e, _ := testEngine()
	now := time.Now().Unix()

	tokyo := models.DisasterRecord{Title: "Strong tremor reported", Location: "Tokyo, Japan", Category: models.CategoryEarthquake}
	chile := models.DisasterRecord{Title: "Strong tremor reported", Location: "Santiago, Chile", Category: models.CategoryEarthquake}

	tokens := []string{"tremor", "japan"}
	ts := e.scoreRecord(tokyo, tokens, false, false, now)
	cs := e.scoreRecord(chile, tokens, false, false, now)
	if ts <= cs {
		t.Errorf("expected region bonus for japan query: tokyo=%d chile=%d", ts, cs)
	}
}
