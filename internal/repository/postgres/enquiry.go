package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/lib/pq"
)

// enquiryColumns are the writable columns, in the order enquiryArgs and
// scanEnquiry use them.
var enquiryColumns = []string{
	"first_name", "last_name", "email", "phone", "state", "suburb",
	"nationality", "institution_name", "product_interest", "customer_rating",
	"classification", "status", "source", "event_source", "comments",
	"submitted_by", "step_program", "sales_manager_involved", "do_not_email",
	"import_source", "original_id", "follow_up_info", "fup_status",
	"enquiry_updated_by", "sales_manager_explanation", "follow_up_notes",
	"input_date", "last_update", "original_fup_date", "best_time_to_follow_up",
}

var (
	selectEnquiries = "SELECT id, " + strings.Join(enquiryColumns, ", ") +
		", created_at, updated_at FROM enquiries"

	insertEnquiry = func() string {
		n := len(enquiryColumns)
		ph := make([]string, n)
		for i := range ph {
			ph[i] = fmt.Sprintf("$%d", i+1)
		}
		return fmt.Sprintf(
			"INSERT INTO enquiries (%s, created_at, updated_at) VALUES (%s, COALESCE($%d, NOW()), COALESCE($%d, NOW())) RETURNING id, created_at, updated_at",
			strings.Join(enquiryColumns, ", "), strings.Join(ph, ", "), n+1, n+2)
	}()
)

// EnquiryRepo implements the enquiry record store against PostgreSQL.
type EnquiryRepo struct{ db *sql.DB }

// NewEnquiryRepo creates a Postgres-backed enquiry repository.
func NewEnquiryRepo(db *sql.DB) *EnquiryRepo { return &EnquiryRepo{db: db} }

// FindAll returns every enquiry, newest first. Ties on created_at fall back
// to the higher id so the order is stable between scans.
func (r *EnquiryRepo) FindAll(ctx context.Context) ([]domain.Enquiry, error) {
	rows, err := r.db.QueryContext(ctx, selectEnquiries+" ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	out := []domain.Enquiry{}
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enquiry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts e and fills in its id and timestamps.
func (r *EnquiryRepo) Create(ctx context.Context, e *domain.Enquiry) error {
	return insert(ctx, r.db, e)
}

// DeleteMany removes the given ids. Unknown ids are ignored.
func (r *EnquiryRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enquiries WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete enquiries: %w", err)
	}
	return res.RowsAffected()
}

// ClearEmails blanks the email of the given ids.
func (r *EnquiryRepo) ClearEmails(ctx context.Context, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE enquiries SET email = '', updated_at = NOW() WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("clear emails: %w", err)
	}
	return res.RowsAffected()
}

// ReplaceAll swaps the table contents for es inside one transaction. Ids are
// reassigned by the database.
func (r *EnquiryRepo) ReplaceAll(ctx context.Context, es []domain.Enquiry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM enquiries`); err != nil {
		return fmt.Errorf("clear enquiries: %w", err)
	}
	for i := range es {
		e := es[i]
		if err := insert(ctx, tx, &e); err != nil {
			return fmt.Errorf("restore enquiry %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q queryRower, e *domain.Enquiry) error {
	args := append(enquiryArgs(e), nullTime(e.CreatedAt), nullTime(e.UpdatedAt))
	err := q.QueryRowContext(ctx, insertEnquiry, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert enquiry: %w", err)
	}
	return nil
}

func enquiryArgs(e *domain.Enquiry) []any {
	return []any{
		e.FirstName, e.LastName, e.Email, e.Phone, e.State, e.Suburb,
		e.Nationality, e.InstitutionName, e.ProductInterest, e.CustomerRating,
		e.Classification, string(e.Status), e.Source, e.EventSource, e.Comments,
		e.SubmittedBy, e.StepProgram, e.SalesManagerInvolved, e.DoNotEmail,
		e.ImportSource, e.OriginalID, e.FollowUpInfo, e.FupStatus,
		e.EnquiryUpdatedBy, e.SalesManagerExplanation, e.FollowUpNotes,
		e.InputDate, e.LastUpdate, e.OriginalFupDate, e.BestTimeToFollowUp,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEnquiry(s scanner) (domain.Enquiry, error) {
	var e domain.Enquiry
	var status string
	err := s.Scan(
		&e.ID,
		&e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.State, &e.Suburb,
		&e.Nationality, &e.InstitutionName, &e.ProductInterest, &e.CustomerRating,
		&e.Classification, &status, &e.Source, &e.EventSource, &e.Comments,
		&e.SubmittedBy, &e.StepProgram, &e.SalesManagerInvolved, &e.DoNotEmail,
		&e.ImportSource, &e.OriginalID, &e.FollowUpInfo, &e.FupStatus,
		&e.EnquiryUpdatedBy, &e.SalesManagerExplanation, &e.FollowUpNotes,
		&e.InputDate, &e.LastUpdate, &e.OriginalFupDate, &e.BestTimeToFollowUp,
		&e.CreatedAt, &e.UpdatedAt,
	)
	e.Status = domain.Status(status)
	return e, err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
