package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/service/backup"
)

// BackupRepo implements backup.Repository against PostgreSQL. Payloads are
// stored as JSONB next to their metadata.
type BackupRepo struct{ db *sql.DB }

// NewBackupRepo creates a Postgres-backed snapshot repository.
func NewBackupRepo(db *sql.DB) *BackupRepo { return &BackupRepo{db: db} }

func (r *BackupRepo) Insert(ctx context.Context, s *domain.Snapshot, payload []byte) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO backups (size_kb, type, status, data, enquiry_count, trigger_event, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, COALESCE($7, NOW()))
		RETURNING id, created_at
	`, s.SizeKB, string(s.Type), s.Status, string(payload), s.EnquiryCount, s.Trigger, nullTime(s.CreatedAt),
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	return nil
}

func (r *BackupRepo) LastCreatedAt(ctx context.Context) (time.Time, bool, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM backups ORDER BY created_at DESC LIMIT 1`,
	).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last backup time: %w", err)
	}
	return t, true, nil
}

func (r *BackupRepo) SetArchiveKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE backups SET archive_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("set archive key: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return backup.ErrNotFound
	}
	return nil
}

func (r *BackupRepo) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM backups
		WHERE id NOT IN (
			SELECT id FROM backups ORDER BY created_at DESC, id DESC LIMIT $1
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune backups: %w", err)
	}
	return res.RowsAffected()
}

func (r *BackupRepo) List(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, size_kb, type, status, enquiry_count, trigger_event, archive_key, created_at
		FROM backups
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	out := []domain.Snapshot{}
	for rows.Next() {
		var s domain.Snapshot
		var typ string
		if err := rows.Scan(&s.ID, &s.SizeKB, &typ, &s.Status, &s.EnquiryCount, &s.Trigger, &s.ArchiveKey, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		s.Type = domain.SnapshotType(typ)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *BackupRepo) Data(ctx context.Context, id int64) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM backups WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backup.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("backup data: %w", err)
	}
	return data, nil
}

func (r *BackupRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM backups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return backup.ErrNotFound
	}
	return nil
}
