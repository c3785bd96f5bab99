package ingestion

import (
	"strings"
	"time"

	"github.com/crisislab/crisis-monitor/internal/models"
)

// Titles that normalize below this length are too generic to dedup on; such
// records are dropped rather than risking over-aggressive merging.
const minDedupKeyLen = 6

// normalizeTitle lowercases, strips non-alphanumerics and collapses
// whitespace so punctuation and casing differences collapse to one key.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// dedupKey combines the normalized title with a day-granularity date bucket,
// so the same headline reported by several sources collapses while the same
// headline about a different event on another day stays distinct.
func dedupKey(rec models.DisasterRecord) (string, bool) {
	title := normalizeTitle(rec.Title)
	if len(title) < minDedupKeyLen {
		return "", false
	}
	day := time.Unix(rec.Timestamp, 0).UTC().Format("2006-01-02")
	return title + "|" + day, true
}

// deduplicate keeps the first record per key in input order. Callers order
// the input by descending confidence first, so a collision resolves to the
// most trusted source deterministically.
func deduplicate(records []models.DisasterRecord) []models.DisasterRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.DisasterRecord, 0, len(records))
	for _, rec := range records {
		key, ok := dedupKey(rec)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
