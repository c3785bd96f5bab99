package archive

import (
	"context"
	"time"

	"github.com/crisislab/crisis-monitor/internal/models"
)

type Filter struct {
	Limit      int
	Offset     int
	Since      *time.Time
	Category   *models.Category
	Severity   *models.Severity
	MinQuality *float64
	Source     string
}

// Repository is the durable history of every ingested record. Unlike the
// cache it never evicts, so export lookups work past the retention window.
type Repository interface {
	Add(ctx context.Context, rec *models.DisasterRecord) error
	GetByID(ctx context.Context, id string) (*models.DisasterRecord, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, opts Filter) ([]models.DisasterRecord, error)
}
