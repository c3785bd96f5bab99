package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mmcdole/gofeed"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// GDACSSource parses the global alert RSS feed and derives severity from the
// color-coded alert level in each entry.
type GDACSSource struct {
	feedURL string
	client  *http.Client
	parser  *gofeed.Parser
	clock   clockwork.Clock
}

func NewGDACSSource(feedURL string, timeout time.Duration, clock clockwork.Clock) *GDACSSource {
	return &GDACSSource{
		feedURL: feedURL,
		client:  newHTTPClient(timeout),
		parser:  gofeed.NewParser(),
		clock:   clock,
	}
}

func (s *GDACSSource) Name() string { return "gdacs" }

func (s *GDACSSource) Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error) {
	req, err := newGetRequest(ctx, s.feedURL)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}

	records := make([]models.DisasterRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		records = append(records, s.toRecord(item))
	}
	return records, nil
}

func (s *GDACSSource) toRecord(item *gofeed.Item) models.DisasterRecord {
	fullText := item.Title + " " + item.Description

	timestamp := s.clock.Now().Unix()
	if item.PublishedParsed != nil {
		timestamp = item.PublishedParsed.Unix()
	} else if item.UpdatedParsed != nil {
		timestamp = item.UpdatedParsed.Unix()
	}

	return models.DisasterRecord{
		ID:             models.DeriveID("gdacs", item.Link+item.Title),
		Title:          item.Title,
		Description:    cleanDescription(item.Description),
		Location:       extractLocation(fullText),
		Severity:       AlertSeverity(fullText),
		Category:       categorizeText(fullText),
		Timestamp:      timestamp,
		Source:         "GDACS-EU",
		Confidence:     0.85,
		AffectedPeople: estimatePeopleFromText(item.Description),
	}
}

// AlertSeverity maps the color-coded alert keywords to severity tiers.
func AlertSeverity(text string) models.Severity {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "red", "extreme", "very high"):
		return models.SeverityCritical
	case containsAny(lower, "orange", "high", "severe"):
		return models.SeverityHigh
	case containsAny(lower, "yellow", "medium", "moderate"):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
