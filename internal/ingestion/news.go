package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"

	"github.com/crisislab/crisis-monitor/internal/models"
	"github.com/crisislab/crisis-monitor/internal/quality"
)

const newsEntriesPerFeed = 20

// NewsSource scans multiple syndication feeds and admits only entries that
// pass the disaster classifier and fall inside the trailing day window.
type NewsSource struct {
	feeds    []string
	client   *http.Client
	parser   *gofeed.Parser
	enhancer *quality.Enhancer
	clock    clockwork.Clock
}

func NewNewsSource(feeds []string, timeout time.Duration, enhancer *quality.Enhancer, clock clockwork.Clock) *NewsSource {
	return &NewsSource{
		feeds:    feeds,
		client:   newHTTPClient(timeout),
		parser:   gofeed.NewParser(),
		enhancer: enhancer,
		clock:    clock,
	}
}

func (s *NewsSource) Name() string { return "news" }

func (s *NewsSource) Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error) {
	cutoff := s.clock.Now().AddDate(0, 0, -days)

	var records []models.DisasterRecord
	var lastErr error
	for _, feedURL := range s.feeds {
		feed, err := s.fetchFeed(ctx, feedURL)
		if err != nil {
			slog.Warn("news feed failed", "url", feedURL, "error", err)
			lastErr = err
			continue
		}

		feedTitle := "Unknown"
		if feed.Title != "" {
			feedTitle = feed.Title
		}

		items := feed.Items
		if len(items) > newsEntriesPerFeed {
			items = items[:newsEntriesPerFeed]
		}
		for _, item := range items {
			if rec, ok := s.toRecord(item, feedTitle, cutoff); ok {
				records = append(records, rec)
			}
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}

func (s *NewsSource) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := newGetRequest(ctx, feedURL)
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

	return s.parser.Parse(resp.Body)
}

func (s *NewsSource) toRecord(item *gofeed.Item, feedTitle string, cutoff time.Time) (models.DisasterRecord, bool) {
	summary := item.Description
	if !s.enhancer.IsActualDisaster(item.Title, summary) {
		return models.DisasterRecord{}, false
	}

	published := s.clock.Now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}
	if published.Before(cutoff) {
		return models.DisasterRecord{}, false
	}

	fullText := item.Title + " " + summary
	location := s.enhancer.CleanLocation(extractLocation(fullText))

	return models.DisasterRecord{
		ID:             models.DeriveID("news", item.Link+item.Title),
		Title:          item.Title,
		Description:    cleanDescription(summary),
		Location:       location,
		Severity:       severityFromText(fullText),
		Category:       categorizeText(fullText),
		Timestamp:      published.Unix(),
		Source:         "News-" + feedTitle,
		Confidence:     0.75,
		AffectedPeople: estimatePeopleFromText(fullText),
		Coordinates:    s.enhancer.Coordinates(location),
	}, true
}
