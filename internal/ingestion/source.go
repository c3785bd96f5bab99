package ingestion

import (
	"context"
	"net/http"
	"time"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// Source is the single capability every feed adapter implements. Fetch
// returns normalized records for roughly the trailing day window; it reports
// failures through the error return and never panics past its boundary.
type Source interface {
	Name() string
	Fetch(ctx context.Context, days int) ([]models.DisasterRecord, error)
}

const userAgent = "crisis-monitor/1.0 (+https://github.com/crisislab/crisis-monitor)"

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newGetRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}
