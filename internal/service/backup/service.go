package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
)

// Trigger labels with throttle rules of their own.
const (
	TriggerNewEnquiry = "New enquiry submission"
	TriggerUpdate     = "Enquiry update"
	TriggerManual     = "Manual backup"
	TriggerScheduled  = "Scheduled backup"
	TriggerPreRestore = "Pre-restore backup"
)

// criticalTriggers always produce a snapshot. Matching is by substring so
// "CSV import: 12 records from leads.csv" counts.
var criticalTriggers = []string{
	"CSV import",
	"Duplicate removal",
	"Database cleanup",
	"Database optimization",
	TriggerManual,
}

// Options configures retention and the throttle windows.
type Options struct {
	Retain             int
	NewEnquiryCooldown time.Duration
	UpdateCooldown     time.Duration
}

// DefaultOptions keeps 20 snapshots, one per hour for new enquiries and one
// per half hour for updates.
func DefaultOptions() Options {
	return Options{Retain: 20, NewEnquiryCooldown: time.Hour, UpdateCooldown: 30 * time.Minute}
}

// Service creates, lists and restores snapshots.
type Service struct {
	enquiries EnquiryStore
	repo      Repository
	archive   Archive
	opts      Options
	now       func() time.Time
}

// NewService creates a backup service. archive may be nil.
func NewService(enquiries EnquiryStore, repo Repository, archive Archive, opts Options) *Service {
	if opts.Retain <= 0 {
		opts.Retain = DefaultOptions().Retain
	}
	return &Service{enquiries: enquiries, repo: repo, archive: archive, opts: opts, now: time.Now}
}

// CreateSnapshot takes an automatic snapshot unless the throttle says the
// last one is recent enough, in which case the result is marked Skipped.
func (s *Service) CreateSnapshot(ctx context.Context, trigger string) (*domain.SnapshotResult, error) {
	if !s.shouldSnapshot(ctx, trigger) {
		return &domain.SnapshotResult{Skipped: true, Reason: "Backup not needed at this time"}, nil
	}
	return s.create(ctx, domain.SnapshotAuto, trigger, true)
}

// CreateManual always takes a snapshot and never prunes.
func (s *Service) CreateManual(ctx context.Context, trigger string) (*domain.SnapshotResult, error) {
	if strings.TrimSpace(trigger) == "" {
		trigger = TriggerManual
	}
	return s.create(ctx, domain.SnapshotManual, trigger, false)
}

func (s *Service) shouldSnapshot(ctx context.Context, trigger string) bool {
	for _, ct := range criticalTriggers {
		if strings.Contains(trigger, ct) {
			return true
		}
	}

	var cooldown time.Duration
	switch trigger {
	case TriggerNewEnquiry:
		cooldown = s.opts.NewEnquiryCooldown
	case TriggerUpdate:
		cooldown = s.opts.UpdateCooldown
	default:
		return true
	}

	last, ok, err := s.repo.LastCreatedAt(ctx)
	if err != nil {
		logger.Warn("could not read last snapshot time, snapshotting anyway", "error", err)
		return true
	}
	return !ok || s.now().Sub(last) >= cooldown
}

func (s *Service) create(ctx context.Context, typ domain.SnapshotType, trigger string, prune bool) (*domain.SnapshotResult, error) {
	enquiries, err := s.enquiries.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enquiries: %w", err)
	}
	if enquiries == nil {
		enquiries = []domain.Enquiry{}
	}

	now := s.now().UTC()
	payload, err := json.Marshal(domain.SnapshotPayload{
		Enquiries: enquiries,
		Timestamp: now,
		Version:   domain.SnapshotVersion,
		Trigger:   trigger,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	snap := &domain.Snapshot{
		SizeKB:       int(math.Round(float64(len(payload)) / 1024)),
		Type:         typ,
		Status:       "Complete",
		EnquiryCount: len(enquiries),
		Trigger:      trigger,
		CreatedAt:    now,
	}
	if err := s.repo.Insert(ctx, snap, payload); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	s.archiveCopy(ctx, snap, payload)

	if prune {
		if n, err := s.repo.Prune(ctx, s.opts.Retain); err != nil {
			logger.Warn("snapshot retention prune failed", "error", err)
		} else if n > 0 {
			logger.Debug("pruned old snapshots", "removed", n)
		}
	}

	logger.Info("snapshot created",
		"id", snap.ID,
		"type", string(typ),
		"enquiries", snap.EnquiryCount,
		"size", snap.SizeDescriptor(),
		"trigger", trigger,
	)
	return &domain.SnapshotResult{Snapshot: snap, Size: snap.SizeDescriptor()}, nil
}

func (s *Service) archiveCopy(ctx context.Context, snap *domain.Snapshot, payload []byte) {
	if s.archive == nil {
		return
	}
	key := ArchiveKey(snap.ID, snap.CreatedAt)
	if err := s.archive.Put(ctx, key, payload); err != nil {
		logger.Warn("snapshot archive upload failed", "id", snap.ID, "key", key, "error", err)
		return
	}
	if err := s.repo.SetArchiveKey(ctx, snap.ID, key); err != nil {
		logger.Warn("could not record archive key", "id", snap.ID, "error", err)
		return
	}
	snap.ArchiveKey = key
}

// ArchiveKey names the archived copy of a snapshot:
// snapshots/YYYY/MM/DD/<id>-<uuid>.json.
func ArchiveKey(id int64, t time.Time) string {
	return fmt.Sprintf("snapshots/%s/%d-%s.json", t.UTC().Format("2006/01/02"), id, uuid.NewString())
}

// List returns snapshot metadata, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Snapshot, error) {
	return s.repo.List(ctx)
}

// Data returns the raw JSON payload of a snapshot.
func (s *Service) Data(ctx context.Context, id int64) ([]byte, error) {
	return s.repo.Data(ctx, id)
}

// Delete removes a snapshot row. Archived copies are left in place.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Restore replaces the whole enquiry table with the contents of snapshot id
// and returns how many enquiries were written. The current state is saved as
// a manual snapshot first; if that fails the restore is abandoned.
func (s *Service) Restore(ctx context.Context, id int64) (int, error) {
	raw, err := s.repo.Data(ctx, id)
	if err != nil {
		return 0, err
	}

	var payload domain.SnapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	if _, err := s.CreateManual(ctx, TriggerPreRestore); err != nil {
		return 0, fmt.Errorf("pre-restore snapshot: %w", err)
	}

	for i := range payload.Enquiries {
		e := &payload.Enquiries[i]
		e.ID = 0
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = e.CreatedAt
		}
	}
	if err := s.enquiries.ReplaceAll(ctx, payload.Enquiries); err != nil {
		return 0, fmt.Errorf("restore enquiries: %w", err)
	}

	logger.Info("snapshot restored", "id", id, "enquiries", len(payload.Enquiries))
	return len(payload.Enquiries), nil
}
