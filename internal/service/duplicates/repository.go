package duplicates

import (
	"context"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// Repository defines the data access the duplicates service needs.
type Repository interface {
	// FindAll returns every enquiry ordered newest first.
	FindAll(ctx context.Context) ([]domain.Enquiry, error)

	// DeleteMany removes the given ids and reports how many rows went away.
	// Ids that no longer exist are ignored.
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

// Snapshotter takes a best-effort backup before destructive work.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, trigger string) (*domain.SnapshotResult, error)
}
