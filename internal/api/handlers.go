package api

import (
	"github.com/ignite/enquiry-crm/internal/datanorm"
	"github.com/ignite/enquiry-crm/internal/service/backup"
	"github.com/ignite/enquiry-crm/internal/service/customfield"
	"github.com/ignite/enquiry-crm/internal/service/duplicates"
	"github.com/ignite/enquiry-crm/internal/service/maintenance"
)

const defaultMaxUploadBytes = 32 << 20

// Handlers contains the admin HTTP handlers.
type Handlers struct {
	importer       *datanorm.Importer
	duplicates     *duplicates.Service
	backups        *backup.Service
	customFields   *customfield.Service
	maintenance    *maintenance.Service
	maxUploadBytes int64
}

// Services bundles what the handlers call into.
type Services struct {
	Importer     *datanorm.Importer
	Duplicates   *duplicates.Service
	Backups      *backup.Service
	CustomFields *customfield.Service
	Maintenance  *maintenance.Service
}

// NewHandlers creates a new Handlers instance. maxUploadBytes <= 0 uses the
// 32 MB default.
func NewHandlers(svc Services, maxUploadBytes int64) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handlers{
		importer:       svc.Importer,
		duplicates:     svc.Duplicates,
		backups:        svc.Backups,
		customFields:   svc.CustomFields,
		maintenance:    svc.Maintenance,
		maxUploadBytes: maxUploadBytes,
	}
}
