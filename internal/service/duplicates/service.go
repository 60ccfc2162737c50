package duplicates

import (
	"context"
	"fmt"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
)

// ActionRemove is the only action Remove accepts.
const ActionRemove = "remove"

// Service scans for duplicates and applies approved removals. It keeps no
// state between calls and is safe for concurrent use.
type Service struct {
	repo       Repository
	snapshots  Snapshotter
	strategies []Strategy
}

// NewService creates a duplicates service. snapshots may be nil, in which
// case removals run without a prior backup.
func NewService(repo Repository, snapshots Snapshotter) *Service {
	return &Service{repo: repo, snapshots: snapshots, strategies: DefaultStrategies()}
}

// Scan reads the whole store and groups it.
func (s *Service) Scan(ctx context.Context) (*domain.DuplicateScan, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enquiries: %w", err)
	}

	groups := Group(records, s.strategies...)
	return &domain.DuplicateScan{
		Summary: Summarize(len(records), groups),
		Groups:  groups,
	}, nil
}

// Remove deletes exactly the given ids after attempting a snapshot. A failed
// snapshot is logged and does not stop the delete. The caller is not checked
// against group keep-records.
func (s *Service) Remove(ctx context.Context, action string, ids []int64) (*domain.RemovalResult, error) {
	if action != ActionRemove || ids == nil {
		return nil, ErrInvalidAction
	}
	for _, id := range ids {
		if id <= 0 {
			return nil, ErrInvalidIDs
		}
	}

	backedUp := false
	if s.snapshots != nil {
		trigger := fmt.Sprintf("Duplicate removal: %d records", len(ids))
		if _, err := s.snapshots.CreateSnapshot(ctx, trigger); err != nil {
			logger.Warn("pre-removal snapshot failed", "ids", len(ids), "error", err)
		} else {
			backedUp = true
		}
	}

	removed := int64(0)
	if len(ids) > 0 {
		n, err := s.repo.DeleteMany(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("delete duplicates: %w", err)
		}
		removed = n
	}

	logger.Info("duplicates removed", "requested", len(ids), "removed", removed, "backup", backedUp)
	return &domain.RemovalResult{
		RemovedCount:  removed,
		BackupCreated: backedUp,
		Message:       fmt.Sprintf("Successfully removed %d duplicate entries", removed),
	}, nil
}
