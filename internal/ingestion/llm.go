package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// LLMSource asks a chat-completion endpoint for a bounded JSON array of
// recent disasters. The array in the response is located
// between the first '[' and the last ']' so surrounding prose is tolerated,
// and any parse failure yields an empty result instead of an error page.
type LLMSource struct {
	apiURL string
	model  string
	apiKey string
	client *http.Client
	clock  clockwork.Clock
}

func NewLLMSource(apiURL, model, apiKey string, timeout time.Duration, clock clockwork.Clock) *LLMSource {
	return &LLMSource{
		apiURL: apiURL,
		model:  model,
		apiKey: apiKey,
		client: newHTTPClient(timeout),
		clock:  clock,
	}
}

func (s *LLMSource) Name() string { return "llm" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type llmDisaster struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	Severity       string  `json:"severity"`
	Category       string  `json:"category"`
	Source         string  `json:"source"`
	Confidence     float64 `json:"confidence"`
	AffectedPeople int64   `json:"affected_people"`
	DamageEstimate string  `json:"damage_estimate"`
	Coordinates    *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"coordinates"`
}

const llmPromptTemplate = `Analyze major disasters and emergencies from the last %d days worldwide.
Focus on significant events with clear impact and location data.

Return a JSON array with this exact format:
[
  {
    "title": "Specific disaster title",
    "description": "Detailed 2-sentence description with impact details",
    "location": "Specific City, Country",
    "severity": "LOW|MEDIUM|HIGH|CRITICAL",
    "category": "EARTHQUAKE|WILDFIRE|FLOOD|HURRICANE|VOLCANO|TORNADO|DROUGHT|OTHER",
    "source": "Specific news source or agency",
    "confidence": 0.8,
    "affected_people": 0,
    "damage_estimate": "specific amount or 'TBD'",
    "coordinates": {"lat": 0.0, "lng": 0.0}
  }
]

Only include real, verified disasters. Maximum 15 disasters.`

func (s *LLMSource) Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: fmt.Sprintf(llmPromptTemplate, days)}},
		MaxTokens:   2000,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, nil
	}

	return s.parseContent(chat.Choices[0].Message.Content), nil
}

// parseContent extracts the embedded JSON array. Malformed content returns
// nil rather than an error so a chatty model degrades to an empty
// contribution.
func (s *LLMSource) parseContent(content string) []models.DisasterRecord {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end <= start {
		return nil
	}

	var items []llmDisaster
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil
	}

	records := make([]models.DisasterRecord, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}
		records = append(records, s.toRecord(item))
	}
	return records
}

func (s *LLMSource) toRecord(item llmDisaster) models.DisasterRecord {
	severity := models.Severity(strings.ToUpper(item.Severity))
	if severity.Rank() == 0 {
		severity = models.SeverityMedium
	}

	category := categorizeText(item.Category + " " + item.Title)

	confidence := item.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.8
	}

	location := item.Location
	if location == "" {
		location = models.LocationTBD
	}

	var coords models.Coordinates
	if item.Coordinates != nil && (item.Coordinates.Lat != 0 || item.Coordinates.Lng != 0) {
		coords = models.NewCoordinates(item.Coordinates.Lat, item.Coordinates.Lng)
	}

	source := "AI-Analysis"
	if item.Source != "" {
		source = "AI-" + item.Source
	}

	return models.DisasterRecord{
		ID:          models.DeriveID("ai", item.Title),
		Title:       item.Title,
		Description: cleanDescription(item.Description),
		Location:    location,
		Severity:    severity,
		Category:    category,
		// The model reports events without precise times; assume a day old.
		Timestamp:      s.clock.Now().Unix() - 24*3600,
		Source:         source,
		Confidence:     confidence,
		AffectedPeople: item.AffectedPeople,
		DamageEstimate: item.DamageEstimate,
		Coordinates:    coords,
	}
}
