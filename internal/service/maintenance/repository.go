package maintenance

import (
	"context"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// EnquiryStore is the part of the record store maintenance reads and edits.
type EnquiryStore interface {
	// FindAll returns every enquiry ordered newest first.
	FindAll(ctx context.Context) ([]domain.Enquiry, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
	// ClearEmails sets the email of the given ids to the empty string.
	ClearEmails(ctx context.Context, ids []int64) (int64, error)
}

// Analyzer refreshes table statistics and returns the tables it processed.
type Analyzer interface {
	Analyze(ctx context.Context) ([]string, error)
}

// Snapshotter takes a best-effort backup before destructive work.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, trigger string) (*domain.SnapshotResult, error)
}
