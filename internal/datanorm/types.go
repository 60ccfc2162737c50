// Package datanorm turns uploaded enquiry spreadsheets into persisted
// enquiries. It owns the CSV tokenizer, the per-field normalization table
// and the import orchestrator that ties them to the record store.
package datanorm

import (
	"context"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// Row is one parsed input record keyed by source column name.
type Row map[string]string

// Empty reports whether every cell of the row is blank. A NULL literal is
// blank, the same as for field normalization.
func (r Row) Empty() bool {
	for _, v := range r {
		if !isBlank(v) {
			return false
		}
	}
	return true
}

// ImportRequest is the input of one import run.
type ImportRequest struct {
	Filename     string
	Data         []byte
	Mappings     []domain.FieldMapping
	CustomFields []domain.CustomField
}

// EnquiryCreator persists a single enquiry, filling in its id and timestamps.
type EnquiryCreator interface {
	Create(ctx context.Context, e *domain.Enquiry) error
}

// Snapshotter takes a best-effort backup of the whole record store.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, trigger string) (*domain.SnapshotResult, error)
}
