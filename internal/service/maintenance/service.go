package maintenance

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
)

// Actions accepted by Run.
const (
	ActionClean     = "clean"
	ActionIntegrity = "integrity"
	ActionOptimize  = "optimize"
)

// Snapshot triggers. Both count as critical, so the throttle never skips
// them.
const (
	TriggerCleanup  = "Database cleanup operation"
	TriggerOptimize = "Database optimization operation"
)

var validEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return validEmail.MatchString(s) }

// CleanDetails counts what Clean changed.
type CleanDetails struct {
	EmptyRecords     int64 `json:"emptyRecords"`
	DuplicateEntries int64 `json:"duplicateEntries"`
	InvalidEmails    int64 `json:"invalidEmails"`
	TotalCleaned     int64 `json:"totalCleaned"`
	BackupCreated    bool  `json:"backupCreated"`
}

// IntegrityDetails is the read-only health report.
type IntegrityDetails struct {
	TotalEnquiries   int      `json:"totalEnquiries"`
	ValidEnquiries   int      `json:"validEnquiries"`
	InvalidEnquiries int      `json:"invalidEnquiries"`
	Health           string   `json:"health"`
	Issues           []string `json:"issues"`
}

// OptimizeDetails lists the tables whose statistics were refreshed.
type OptimizeDetails struct {
	TablesOptimized []string `json:"tablesOptimized"`
	BackupCreated   bool     `json:"backupCreated"`
}

// Result is what every action returns. Details holds one of the *Details
// types above.
type Result struct {
	Message string `json:"message"`
	Details any    `json:"details"`
}

// Service runs maintenance actions against the enquiry store.
type Service struct {
	store     EnquiryStore
	analyzer  Analyzer
	snapshots Snapshotter
}

// NewService creates a maintenance service. analyzer and snapshots may be
// nil.
func NewService(store EnquiryStore, analyzer Analyzer, snapshots Snapshotter) *Service {
	return &Service{store: store, analyzer: analyzer, snapshots: snapshots}
}

// Run dispatches on action.
func (s *Service) Run(ctx context.Context, action string) (*Result, error) {
	switch action {
	case ActionClean:
		d, err := s.Clean(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{
			Message: fmt.Sprintf("Database cleaned successfully! Removed %d problematic records.", d.TotalCleaned),
			Details: d,
		}, nil
	case ActionIntegrity:
		d, err := s.CheckIntegrity(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{
			Message: "Integrity check completed. Database health: " + d.Health,
			Details: d,
		}, nil
	case ActionOptimize:
		d, err := s.Optimize(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{
			Message: fmt.Sprintf("Database optimized successfully! Processed %d tables.", len(d.TablesOptimized)),
			Details: d,
		}, nil
	default:
		return nil, ErrInvalidAction
	}
}

// Clean snapshots the store and then, in order, deletes empty records,
// blanks malformed emails and removes email duplicates keeping the oldest
// record of each address. Emails match case-insensitively after trimming,
// the same way the duplicate scan groups them.
func (s *Service) Clean(ctx context.Context) (*CleanDetails, error) {
	backedUp := s.snapshot(ctx, TriggerCleanup)

	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enquiries: %w", err)
	}

	var empty, invalid []int64
	var rest []domain.Enquiry
	for _, e := range records {
		email := strings.TrimSpace(e.Email)
		switch {
		case strings.TrimSpace(e.FirstName) == "" && email == "" && strings.TrimSpace(e.Phone) == "":
			empty = append(empty, e.ID)
			continue
		case email != "" && !ValidEmail(email):
			invalid = append(invalid, e.ID)
			e.Email = ""
		}
		rest = append(rest, e)
	}

	d := &CleanDetails{BackupCreated: backedUp}
	if len(empty) > 0 {
		if d.EmptyRecords, err = s.store.DeleteMany(ctx, empty); err != nil {
			return nil, fmt.Errorf("delete empty enquiries: %w", err)
		}
	}
	if len(invalid) > 0 {
		if d.InvalidEmails, err = s.store.ClearEmails(ctx, invalid); err != nil {
			return nil, fmt.Errorf("clear invalid emails: %w", err)
		}
	}
	if dupes := olderEmailDuplicates(rest); len(dupes) > 0 {
		if d.DuplicateEntries, err = s.store.DeleteMany(ctx, dupes); err != nil {
			return nil, fmt.Errorf("delete duplicate enquiries: %w", err)
		}
	}
	d.TotalCleaned = d.EmptyRecords + d.InvalidEmails + d.DuplicateEntries

	logger.Info("database cleaned",
		"empty", d.EmptyRecords,
		"invalid_emails", d.InvalidEmails,
		"duplicates", d.DuplicateEntries,
	)
	return d, nil
}

// olderEmailDuplicates returns every id sharing an email with an older
// record. records are newest first, so the last member of each address is
// the one kept.
func olderEmailDuplicates(records []domain.Enquiry) []int64 {
	keep := make(map[string]int64)
	for _, e := range records {
		if key := strings.ToLower(strings.TrimSpace(e.Email)); key != "" {
			keep[key] = e.ID
		}
	}
	var drop []int64
	for _, e := range records {
		key := strings.ToLower(strings.TrimSpace(e.Email))
		if key != "" && keep[key] != e.ID {
			drop = append(drop, e.ID)
		}
	}
	return drop
}

// CheckIntegrity reports records missing a first name, missing both email
// and phone, or carrying a malformed email. Nothing is modified.
func (s *Service) CheckIntegrity(ctx context.Context) (*IntegrityDetails, error) {
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enquiries: %w", err)
	}

	d := &IntegrityDetails{TotalEnquiries: len(records), Issues: []string{}}
	for _, e := range records {
		before := len(d.Issues)
		email := strings.TrimSpace(e.Email)
		if strings.TrimSpace(e.FirstName) == "" {
			d.Issues = append(d.Issues, fmt.Sprintf("Enquiry #%d: Missing first name", e.ID))
		}
		if email == "" && strings.TrimSpace(e.Phone) == "" {
			d.Issues = append(d.Issues, fmt.Sprintf("Enquiry #%d: Missing both email and phone", e.ID))
		}
		if email != "" && !ValidEmail(email) {
			d.Issues = append(d.Issues, fmt.Sprintf("Enquiry #%d: Invalid email format", e.ID))
		}
		if len(d.Issues) == before {
			d.ValidEnquiries++
		} else {
			d.InvalidEnquiries++
		}
	}
	d.Health = healthGrade(len(d.Issues))
	return d, nil
}

func healthGrade(issues int) string {
	switch {
	case issues == 0:
		return "Excellent"
	case issues < 5:
		return "Good"
	case issues < 10:
		return "Fair"
	default:
		return "Poor"
	}
}

// Optimize snapshots the store and refreshes planner statistics.
func (s *Service) Optimize(ctx context.Context) (*OptimizeDetails, error) {
	d := &OptimizeDetails{TablesOptimized: []string{}}
	d.BackupCreated = s.snapshot(ctx, TriggerOptimize)
	if s.analyzer == nil {
		return d, nil
	}
	tables, err := s.analyzer.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	d.TablesOptimized = tables
	logger.Info("database optimized", "tables", strings.Join(tables, ","))
	return d, nil
}

func (s *Service) snapshot(ctx context.Context, trigger string) bool {
	if s.snapshots == nil {
		return false
	}
	if _, err := s.snapshots.CreateSnapshot(ctx, trigger); err != nil {
		logger.Warn("pre-maintenance snapshot failed", "trigger", trigger, "error", err)
		return false
	}
	return true
}
