package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// maintainedTables are refreshed by Analyze, in this order.
var maintainedTables = []string{"enquiries", "backups", "custom_fields"}

// MaintenanceRepo runs housekeeping statements.
type MaintenanceRepo struct{ db *sql.DB }

func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

// Analyze updates planner statistics for every application table.
func (r *MaintenanceRepo) Analyze(ctx context.Context) ([]string, error) {
	done := make([]string, 0, len(maintainedTables))
	for _, t := range maintainedTables {
		if _, err := r.db.ExecContext(ctx, "ANALYZE "+pq.QuoteIdentifier(t)); err != nil {
			return done, fmt.Errorf("analyze %s: %w", t, err)
		}
		done = append(done, t)
	}
	return done, nil
}
