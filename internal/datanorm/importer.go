package datanorm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
)

// Importer drives one import run end-to-end. Rows are processed strictly in
// order; a failing row never aborts its siblings.
type Importer struct {
	store     EnquiryCreator
	snapshots Snapshotter
	now       func() time.Time
}

// NewImporter creates an importer. snapshots may be nil, in which case no
// post-import backup is taken.
func NewImporter(store EnquiryCreator, snapshots Snapshotter) *Importer {
	return &Importer{store: store, snapshots: snapshots, now: time.Now}
}

// Import parses req.Data, maps and normalizes each row and persists the
// accepted ones. The returned error is non-nil only for whole-request
// failures (bad extension, unparseable JSON, unusable mappings).
func (imp *Importer) Import(ctx context.Context, req ImportRequest) (*domain.ImportReport, error) {
	customLabels := make(map[string]string, len(req.CustomFields))
	for _, cf := range req.CustomFields {
		if cf.Key != "" {
			customLabels[cf.Key] = cf.Label
		}
	}

	mappings, err := activeMappings(req.Mappings, customLabels)
	if err != nil {
		return nil, err
	}

	rows, err := ParseFile(req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	report := &domain.ImportReport{
		ErrorDetails: []string{},
		TotalRecords: len(rows),
	}

	for i, row := range rows {
		rowNum := i + 1
		if row.Empty() {
			report.Skipped++
			continue
		}

		e, missing := imp.buildEnquiry(row, i, mappings, customLabels, req.Filename)
		if len(missing) > 0 {
			report.Errors++
			report.ErrorDetails = append(report.ErrorDetails,
				fmt.Sprintf("Row %d: Missing required fields: %s", rowNum, strings.Join(missing, ", ")))
			continue
		}

		if err := imp.store.Create(ctx, e); err != nil {
			report.Errors++
			report.ErrorDetails = append(report.ErrorDetails, fmt.Sprintf("Row %d: %v", rowNum, err))
			logger.Warn("import row rejected by store", "batch", batchID, "row", rowNum, "error", err)
			continue
		}
		report.Imported++
	}

	logger.Info("import completed",
		"batch", batchID,
		"file", req.Filename,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"errors", report.Errors,
	)

	if report.Imported > 0 && imp.snapshots != nil {
		trigger := fmt.Sprintf("CSV import: %d records from %s", report.Imported, req.Filename)
		if _, err := imp.snapshots.CreateSnapshot(ctx, trigger); err != nil {
			logger.Warn("post-import snapshot failed", "batch", batchID, "error", err)
		}
	}

	report.Message = fmt.Sprintf("Import completed. %d records imported successfully.", report.Imported)
	return report, nil
}

// activeMappings drops mappings without a target and rejects targets that
// are neither enquiry fields nor declared custom fields.
func activeMappings(all []domain.FieldMapping, custom map[string]string) ([]domain.FieldMapping, error) {
	var active []domain.FieldMapping
	for _, m := range all {
		if !m.Active() {
			continue
		}
		if _, ok := custom[m.TargetField]; !ok && !IsEnquiryField(m.TargetField) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, m.TargetField)
		}
		active = append(active, m)
	}
	if len(active) == 0 {
		return nil, ErrNoMappings
	}
	return active, nil
}

// buildEnquiry maps one row. It returns every missing required target rather
// than stopping at the first.
func (imp *Importer) buildEnquiry(row Row, idx int, mappings []domain.FieldMapping, custom map[string]string, filename string) (*domain.Enquiry, []string) {
	e := &domain.Enquiry{}
	var missing []string
	customValues := make(map[string]domain.CustomFieldValue)

	for _, m := range mappings {
		raw := row[m.SourceField]
		if m.IsRequired && isBlank(raw) {
			missing = append(missing, m.TargetField)
			continue
		}

		if label, ok := custom[m.TargetField]; ok {
			if strings.TrimSpace(raw) != "" {
				customValues[m.TargetField] = domain.CustomFieldValue{Label: label, Value: raw}
			}
			continue
		}

		v, ok := NormalizeField(m.TargetField, raw)
		if !ok {
			continue
		}
		enquirySetters[m.TargetField](e, v)
	}

	if len(missing) > 0 {
		return nil, missing
	}

	if len(customValues) > 0 {
		if data, err := json.Marshal(customValues); err == nil {
			e.FollowUpInfo = string(data)
		}
	}

	now := imp.now()
	applyDefaults(e, now)

	if e.OriginalID == "" {
		e.OriginalID = sourceRowID(row)
	}
	if e.OriginalID == "" {
		e.OriginalID = fmt.Sprintf("import_%d_%d", now.UnixMilli(), idx)
	}
	if e.ImportSource == "" {
		e.ImportSource = "Import from " + filename
	}
	return e, nil
}

// applyDefaults fills unset record-level fields. A classification without a
// rating seeds the rating, which is re-normalized so it stays inside the
// rating enumeration.
func applyDefaults(e *domain.Enquiry, now time.Time) {
	if e.Classification != "" && e.CustomerRating == "" {
		e.CustomerRating, _ = normalizeRating(e.Classification)
	}
	if e.Status == "" {
		e.Status = domain.StatusNew
	}
	if e.CustomerRating == "" {
		e.CustomerRating = domain.NotApplicable
	}
	if e.Classification == "" {
		e.Classification = domain.NotApplicable
	}
	if e.StepProgram == "" {
		e.StepProgram = domain.NotApplicable
	}
	if e.SalesManagerInvolved == "" {
		e.SalesManagerInvolved = "No"
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}

func sourceRowID(row Row) string {
	for _, k := range []string{"id", "ID"} {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}
