package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// ReliefWebSource queries the UN relief database for disasters created within
// the trailing day window.
type ReliefWebSource struct {
	apiURL string
	client *http.Client
	clock  clockwork.Clock
}

func NewReliefWebSource(apiURL string, timeout time.Duration, clock clockwork.Clock) *ReliefWebSource {
	return &ReliefWebSource{
		apiURL: apiURL,
		client: newHTTPClient(timeout),
		clock:  clock,
	}
}

func (s *ReliefWebSource) Name() string { return "reliefweb" }

type reliefWebResponse struct {
	Data []reliefWebItem `json:"data"`
}

type reliefWebItem struct {
	ID     json.Number     `json:"id"`
	Fields reliefWebFields `json:"fields"`
}

type reliefWebFields struct {
	Title        string              `json:"title"`
	Body         string              `json:"body"`
	Countries    []reliefWebCountry  `json:"country"`
	Date         reliefWebDate       `json:"date"`
	DisasterType []reliefWebDisaster `json:"disaster_type"`
}

type reliefWebCountry struct {
	Name string `json:"name"`
}

type reliefWebDate struct {
	Created string `json:"created"`
}

type reliefWebDisaster struct {
	Name string `json:"name"`
}

func (s *ReliefWebSource) Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error) {
	cutoff := s.clock.Now().AddDate(0, 0, -days).Format("2006-01-02")

	params := url.Values{}
	params.Set("appname", "crisis-monitor")
	params.Set("limit", "50")
	params.Add("sort[]", "date:desc")
	for _, f := range []string{"id", "title", "body", "country", "date", "disaster_type"} {
		params.Add("fields[include][]", f)
	}
	params.Set("filter[field]", "date.created")
	params.Set("filter[value][from]", cutoff)

	req, err := newGetRequest(ctx, s.apiURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data reliefWebResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	records := make([]models.DisasterRecord, 0, len(data.Data))
	for _, item := range data.Data {
		records = append(records, s.toRecord(item))
	}
	return records, nil
}

func (s *ReliefWebSource) toRecord(item reliefWebItem) models.DisasterRecord {
	fields := item.Fields

	location := "Global"
	if len(fields.Countries) > 0 {
		names := make([]string, 0, len(fields.Countries))
		for _, c := range fields.Countries {
			if c.Name != "" {
				names = append(names, c.Name)
			}
		}
		if len(names) > 0 {
			location = strings.Join(names, ", ")
		}
	}

	description := cleanDescription(fields.Body)

	return models.DisasterRecord{
		ID:             models.DeriveID("reliefweb", item.ID.String()+fields.Title),
		Title:          fields.Title,
		Description:    description,
		Location:       location,
		Severity:       severityFromText(description),
		Category:       mapReliefWebTypes(fields.DisasterType),
		Timestamp:      s.parseCreated(fields.Date.Created),
		Source:         "ReliefWeb-UN",
		Confidence:     0.90,
		AffectedPeople: estimatePeopleFromText(description),
	}
}

// mapReliefWebTypes maps the provider taxonomy onto the category enum via
// substring matching; first match wins.
func mapReliefWebTypes(types []reliefWebDisaster) models.Category {
	mapping := []struct {
		substr   string
		category models.Category
	}{
		{"earthquake", models.CategoryEarthquake},
		{"flood", models.CategoryFlood},
		{"drought", models.CategoryDrought},
		{"cyclone", models.CategoryHurricane},
		{"hurricane", models.CategoryHurricane},
		{"typhoon", models.CategoryHurricane},
		{"wildfire", models.CategoryWildfire},
		{"fire", models.CategoryWildfire},
		{"volcano", models.CategoryVolcano},
		{"landslide", models.CategoryLandslide},
		{"tsunami", models.CategoryTsunami},
	}

	for _, t := range types {
		name := strings.ToLower(t.Name)
		for _, m := range mapping {
			if strings.Contains(name, m.substr) {
				return m.category
			}
		}
	}
	return models.CategoryOther
}

func (s *ReliefWebSource) parseCreated(created string) int64 {
	if created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			return t.Unix()
		}
	}
	return s.clock.Now().Unix()
}
