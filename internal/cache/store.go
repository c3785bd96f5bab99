package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/crisislab/crisis-monitor/internal/models"
)

const (
	snapshotFile    = "disasters_cache.json"
	metaFile        = "cache_meta.json"
	snapshotVersion = "1.0"
)

// Snapshot is the persisted document: the full record set replaced wholesale
// on every save.
type Snapshot struct {
	Disasters  []models.DisasterRecord `json:"disasters"`
	TotalCount int                     `json:"total_count"`
	SavedAt    string                  `json:"saved_at"`
	Version    string                  `json:"version"`
}

// Meta is the companion metadata document.
type Meta struct {
	LastUpdate     string `json:"last_update"`
	TotalDisasters int    `json:"total_disasters"`
	CacheFileSize  int64  `json:"cache_file_size"`
}

// Stats summarizes cache state for the stats endpoint.
type Stats struct {
	TotalDisasters int    `json:"total_disasters"`
	LastUpdate     string `json:"last_update,omitempty"`
	OldestRecord   int64  `json:"oldest_disaster,omitempty"`
	NewestRecord   int64  `json:"newest_disaster,omitempty"`
}

// Store is the durable snapshot of the aggregated record set. All methods
// are safe for concurrent use; writes replace the snapshot atomically via a
// temp file and rename.
type Store struct {
	dir           string
	retentionDays int
	clock         clockwork.Clock

	mu         sync.RWMutex
	records    []models.DisasterRecord
	lastUpdate time.Time
}

func NewStore(dir string, retentionDays int, clock clockwork.Clock) *Store {
	return &Store{
		dir:           dir,
		retentionDays: retentionDays,
		clock:         clock,
	}
}

// Load reads the snapshot and metadata from disk. A missing or unreadable
// snapshot degrades to an empty cache; only directory creation failures are
// returned.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("error creating cache dir: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, snapshotFile))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("cache load failed, starting empty", "error", err)
		}
		s.records = nil
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Error("cache snapshot corrupt, starting empty", "error", err)
		s.records = nil
		return nil
	}
	s.records = snap.Disasters

	if metaData, err := os.ReadFile(filepath.Join(s.dir, metaFile)); err == nil {
		var meta Meta
		if err := json.Unmarshal(metaData, &meta); err == nil && meta.LastUpdate != "" {
			if t, err := time.Parse(time.RFC3339, meta.LastUpdate); err == nil {
				s.lastUpdate = t
			}
		}
	}

	slog.Info("cache loaded", "records", len(s.records))
	return nil
}

// Get returns the cached records inside the trailing day window, newest
// first.
func (s *Store) Get(days int) []models.DisasterRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.clock.Now().AddDate(0, 0, -days).Unix()

	out := make([]models.DisasterRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Timestamp >= cutoff {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Merge adds records whose id is not already cached, evicts everything older
// than the retention window and persists the full snapshot. It returns the
// number of newly added records.
func (s *Store) Merge(newRecords []models.DisasterRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.records))
	for _, rec := range s.records {
		existing[rec.ID] = struct{}{}
	}

	added := 0
	for _, rec := range newRecords {
		if _, ok := existing[rec.ID]; ok {
			continue
		}
		existing[rec.ID] = struct{}{}
		s.records = append(s.records, rec)
		added++
	}

	cutoff := s.clock.Now().AddDate(0, 0, -s.retentionDays).Unix()
	kept := s.records[:0]
	evicted := 0
	for _, rec := range s.records {
		if rec.Timestamp >= cutoff {
			kept = append(kept, rec)
		} else {
			evicted++
		}
	}
	s.records = kept

	s.lastUpdate = s.clock.Now()

	if err := s.persist(); err != nil {
		return added, err
	}

	slog.Info("cache updated", "added", added, "evicted", evicted, "total", len(s.records))
	return added, nil
}

// ShouldRefresh reports whether the cache has never been updated or the
// elapsed time since the last update exceeds the interval.
func (s *Store) ShouldRefresh(interval time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastUpdate.IsZero() {
		return true
	}
	return s.clock.Now().Sub(s.lastUpdate) > interval
}

// Size returns the current record count.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalDisasters: len(s.records)}
	if !s.lastUpdate.IsZero() {
		stats.LastUpdate = s.lastUpdate.Format(time.RFC3339)
	}
	for _, rec := range s.records {
		if stats.OldestRecord == 0 || rec.Timestamp < stats.OldestRecord {
			stats.OldestRecord = rec.Timestamp
		}
		if rec.Timestamp > stats.NewestRecord {
			stats.NewestRecord = rec.Timestamp
		}
	}
	return stats
}

// persist writes the snapshot and metadata. The snapshot goes to a temp file
// first and is renamed into place so a crash mid-write leaves the previous
// snapshot intact. Caller holds the write lock.
func (s *Store) persist() error {
	snap := Snapshot{
		Disasters:  s.records,
		TotalCount: len(s.records),
		SavedAt:    s.clock.Now().Format(time.RFC3339),
		Version:    snapshotVersion,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}

	path := filepath.Join(s.dir, snapshotFile)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("error writing snapshot: %w", err)
	}

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}

	meta := Meta{
		LastUpdate:     s.lastUpdate.Format(time.RFC3339),
		TotalDisasters: len(s.records),
		CacheFileSize:  size,
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding meta: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, metaFile), metaData); err != nil {
		return fmt.Errorf("error writing meta: %w", err)
	}

	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
