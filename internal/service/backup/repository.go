package backup

import (
	"context"
	"time"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// EnquiryStore is the part of the record store snapshots read and restores
// rewrite.
type EnquiryStore interface {
	FindAll(ctx context.Context) ([]domain.Enquiry, error)
	// ReplaceAll deletes every enquiry and inserts the given ones with fresh
	// ids, atomically.
	ReplaceAll(ctx context.Context, enquiries []domain.Enquiry) error
}

// Repository persists snapshot rows.
type Repository interface {
	// Insert stores the snapshot and its payload, filling in ID and CreatedAt.
	Insert(ctx context.Context, s *domain.Snapshot, payload []byte) error

	// LastCreatedAt returns the creation time of the newest snapshot.
	// ok is false when there are none.
	LastCreatedAt(ctx context.Context) (t time.Time, ok bool, err error)

	// SetArchiveKey records where the payload was archived.
	SetArchiveKey(ctx context.Context, id int64, key string) error

	// Prune deletes all but the newest keep snapshots.
	Prune(ctx context.Context, keep int) (int64, error)

	List(ctx context.Context) ([]domain.Snapshot, error)

	// Data returns the raw payload. Returns ErrNotFound if id is unknown.
	Data(ctx context.Context, id int64) ([]byte, error)

	// Delete removes a snapshot. Returns ErrNotFound if id is unknown.
	Delete(ctx context.Context, id int64) error
}

// Archive receives a copy of every snapshot payload.
type Archive interface {
	Put(ctx context.Context, key string, data []byte) error
}
