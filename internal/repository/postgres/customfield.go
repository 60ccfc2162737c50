package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/service/customfield"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// CustomFieldRepo implements customfield.Repository against PostgreSQL.
type CustomFieldRepo struct{ db *sql.DB }

// NewCustomFieldRepo creates a Postgres-backed custom field repository.
func NewCustomFieldRepo(db *sql.DB) *CustomFieldRepo { return &CustomFieldRepo{db: db} }

func (r *CustomFieldRepo) List(ctx context.Context) ([]domain.CustomField, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, label FROM custom_fields ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()

	var out []domain.CustomField
	for rows.Next() {
		var f domain.CustomField
		if err := rows.Scan(&f.Key, &f.Label); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *CustomFieldRepo) Insert(ctx context.Context, f domain.CustomField) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO custom_fields (key, label, created_at) VALUES ($1, $2, NOW())`,
		f.Key, f.Label,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return customfield.ErrFieldExists
	}
	if err != nil {
		return fmt.Errorf("insert custom field: %w", err)
	}
	return nil
}

func (r *CustomFieldRepo) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_fields WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete custom field: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customfield.ErrNotFound
	}
	return nil
}
