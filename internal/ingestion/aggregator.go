package ingestion

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/models"
	"github.com/crisislab/crisis-monitor/internal/observability"
	"github.com/crisislab/crisis-monitor/internal/quality"
)

// Aggregator fans out to every source concurrently, merges the successes,
// deduplicates, filters to the recency window and quality-enhances the
// survivors. A failing or slow source contributes an empty result; nothing
// below this boundary propagates an error to callers.
type Aggregator struct {
	sources      []Source
	enhancer     *quality.Enhancer
	clock        clockwork.Clock
	fetchTimeout time.Duration
	metrics      *observability.Metrics // optional
}

func NewAggregator(sources []Source, enhancer *quality.Enhancer, clock clockwork.Clock, fetchTimeout time.Duration, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		sources:      sources,
		enhancer:     enhancer,
		clock:        clock,
		fetchTimeout: fetchTimeout,
		metrics:      metrics,
	}
}

// SourceResult carries one adapter's contribution across the fan-in barrier.
type SourceResult struct {
	Source  string
	Records []models.DisasterRecord
	Err     error
}

// Collect runs one aggregation cycle over the trailing day window.
func (a *Aggregator) Collect(ctx context.Context, days int) []models.DisasterRecord {
	results := make(chan SourceResult, len(a.sources))

	for _, src := range a.sources {
		go func(src Source) {
			fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
			defer cancel()

			records, err := src.Fetch(fetchCtx, days)
			results <- SourceResult{Source: src.Name(), Records: records, Err: err}
		}(src)
	}

	// Fan-in barrier: every goroutine sends exactly once, so the merge below
	// runs single-threaded with no shared mutable state.
	var all []models.DisasterRecord
	for range a.sources {
		res := <-results
		if res.Err != nil {
			slog.Warn("source fetch failed", "source", res.Source, "error", res.Err)
			if a.metrics != nil {
				a.metrics.SourceFailures.WithLabelValues(res.Source).Inc()
			}
			continue
		}
		slog.Debug("source fetch complete", "source", res.Source, "count", len(res.Records))
		if a.metrics != nil {
			a.metrics.RecordsFetched.WithLabelValues(res.Source).Add(float64(len(res.Records)))
		}
		all = append(all, res.Records...)
	}

	// Higher-confidence sources win dedup collisions; the sort is stable so
	// within one source the feed's own order is preserved.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	cutoff := a.clock.Now().AddDate(0, 0, -days).Unix()
	recent := all[:0]
	for _, rec := range all {
		if rec.Timestamp >= cutoff {
			recent = append(recent, rec)
		}
	}

	unique := deduplicate(recent)

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Timestamp > unique[j].Timestamp
	})

	for i, rec := range unique {
		unique[i] = a.enhancer.Enhance(rec)
	}

	slog.Info("aggregation cycle complete", "fetched", len(all), "unique", len(unique))
	return unique
}
