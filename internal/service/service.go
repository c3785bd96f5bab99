package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/archive"
	"github.com/crisislab/crisis-monitor/internal/cache"
	"github.com/crisislab/crisis-monitor/internal/ingestion"
	"github.com/crisislab/crisis-monitor/internal/models"
	"github.com/crisislab/crisis-monitor/internal/observability"
	"github.com/crisislab/crisis-monitor/internal/search"
	"github.com/crisislab/crisis-monitor/internal/worker"
)

// AggregationService owns the cache, the archive, the source aggregator and
// the search engine. All request handlers go through it; there is no ambient
// global state.
type AggregationService struct {
	store      *cache.Store
	repo       archive.Repository
	aggregator *ingestion.Aggregator
	engine     *search.Engine
	metrics    *observability.Metrics
	clock      clockwork.Clock

	retentionDays   int
	refreshInterval time.Duration

	pool       *worker.Pool
	refreshing atomic.Bool
	wg         sync.WaitGroup
}

type Options struct {
	Store           *cache.Store
	Repo            archive.Repository
	Aggregator      *ingestion.Aggregator
	Engine          *search.Engine
	Metrics         *observability.Metrics
	Clock           clockwork.Clock
	RetentionDays   int
	RefreshInterval time.Duration
	WorkerCount     int
	WorkerBuffer    int
}

func New(opts Options) *AggregationService {
	s := &AggregationService{
		store:           opts.Store,
		repo:            opts.Repo,
		aggregator:      opts.Aggregator,
		engine:          opts.Engine,
		metrics:         opts.Metrics,
		clock:           opts.Clock,
		retentionDays:   opts.RetentionDays,
		refreshInterval: opts.RefreshInterval,
	}

	s.pool = worker.NewPool(opts.WorkerCount, opts.WorkerBuffer, s.archiveRecord)
	return s
}

// archiveRecord is the worker-pool processor: newly merged records land in
// the durable archive, skipping ids already present.
func (s *AggregationService) archiveRecord(ctx context.Context, rec *models.DisasterRecord) error {
	if s.repo == nil {
		return nil
	}

	exists, err := s.repo.Exists(ctx, rec.ID)
	if err != nil {
		slog.Error("error checking archive", "id", rec.ID, "error", err)
		return err
	}
	if exists {
		return nil
	}

	if err := s.repo.Add(ctx, rec); err != nil {
		slog.Error("error archiving record", "id", rec.ID, "error", err)
		return err
	}

	slog.Debug("archived record", "id", rec.ID, "category", rec.Category, "source", rec.Source)
	return nil
}

// Start launches the worker pool and the refresh loop. The first cycle runs
// immediately when the cache is cold or stale.
func (s *AggregationService) Start(ctx context.Context) {
	s.pool.Start(ctx)

	s.wg.Add(1)
	go s.runRefreshLoop(ctx)
}

func (s *AggregationService) runRefreshLoop(ctx context.Context) {
	defer s.wg.Done()
	slog.Info("starting refresh loop", "interval", s.refreshInterval)

	if s.store.ShouldRefresh(s.refreshInterval) {
		s.Refresh(ctx)
	}

	ticker := s.clock.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh loop shutting down")
			return
		case <-ticker.Chan():
			s.Refresh(ctx)
		}
	}
}

// Stop waits for the refresh loop and drains the archive queue.
func (s *AggregationService) Stop() {
	s.wg.Wait()
	s.pool.Stop()
	slog.Info("aggregation service stopped")
}

// Refresh runs one collect-merge cycle. Concurrent attempts are serialized:
// a cycle that finds one already in progress returns immediately.
func (s *AggregationService) Refresh(ctx context.Context) (int, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		slog.Debug("refresh already in progress, skipping")
		if s.metrics != nil {
			s.metrics.Refreshes.WithLabelValues("skipped").Inc()
		}
		return 0, nil
	}
	defer s.refreshing.Store(false)

	start := time.Now()

	records := s.aggregator.Collect(ctx, s.retentionDays)

	added, err := s.store.Merge(records)
	if err != nil {
		slog.Error("cache merge failed", "error", err)
		if s.metrics != nil {
			s.metrics.Refreshes.WithLabelValues("failed").Inc()
		}
		return added, err
	}

	// Everything merged into the cache gets queued for archiving, even
	// when ctx was cancelled mid-refresh. The pool drains on Stop.
	for i := range records {
		s.pool.Submit(&records[i])
	}

	if s.metrics != nil {
		s.metrics.Refreshes.WithLabelValues("completed").Inc()
		s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
		s.metrics.CacheSize.Set(float64(s.store.Size()))
	}

	slog.Info("refresh complete", "added", added, "duration", time.Since(start))
	return added, nil
}

// GetInitial returns the cached records for the trailing day window, newest
// first.
func (s *AggregationService) GetInitial(days int) []models.DisasterRecord {
	if days <= 0 || days > s.retentionDays {
		days = s.retentionDays
	}
	return s.store.Get(days)
}

// Search scores the cached window against a free-text query. Failures on
// this path degrade to an empty result set; the caller never sees an error.
func (s *AggregationService) Search(query string, maxResults int) []models.DisasterRecord {
	if maxResults <= 0 {
		maxResults = 20
	}

	start := time.Now()
	results := s.engine.Search(query, s.store.Get(s.retentionDays), maxResults)

	if s.metrics != nil {
		s.metrics.SearchRequests.Inc()
		s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}
	return results
}

// Lookup finds a record by id, preferring the cache and falling back to the
// archive for records past the retention window.
func (s *AggregationService) Lookup(ctx context.Context, id string) (*models.DisasterRecord, error) {
	for _, rec := range s.store.Get(s.retentionDays) {
		if rec.ID == id {
			return &rec, nil
		}
	}
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AggregationService) Stats() cache.Stats {
	return s.store.Stats()
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

// ExportRecord flattens a record into the ledger-upload shape consumed by
// external persistence. Field names and units are a wire contract.
func (s *AggregationService) ExportRecord(rec models.DisasterRecord) map[string]any {
	now := s.clock.Now().Unix()
	return map[string]any{
		"id":              rec.ID,
		"name":            rec.Title,
		"description":     rec.Description,
		"location":        rec.Location,
		"coordinates":     map[string]float64{"lat": rec.Coordinates.Lat, "lng": rec.Coordinates.Lng},
		"start_date":      rec.Timestamp,
		"end_date":        int64(0),
		"image_url":       "",
		"external_source": rec.Source,
		"status":          0,
		"created_at":      now,
		"updated_at":      now,
		"created_by":      zeroAddress,
		"severity":        string(rec.Severity),
		"category":        string(rec.Category),
		"confidence":      rec.Confidence,
		"affected_people": rec.AffectedPeople,
		"damage_estimate": defaultString(rec.DamageEstimate, "TBD"),
	}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
