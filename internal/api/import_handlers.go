package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/enquiry-crm/internal/datanorm"
	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
)

// HandleImport imports an uploaded CSV or JSON file.
// Row failures are reported in the body of a 200 response; only
// whole-request problems produce an error status.
//
//	POST /api/admin/import  (multipart: file, mappings, customFields)
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	mappingsJSON := r.FormValue("mappings")
	if mappingsJSON == "" {
		httputil.BadRequest(w, "File and mappings are required")
		return
	}
	var mappings []domain.FieldMapping
	if err := json.Unmarshal([]byte(mappingsJSON), &mappings); err != nil {
		httputil.BadRequest(w, "invalid mappings: "+err.Error())
		return
	}

	custom, ok := h.requestCustomFields(w, r)
	if !ok {
		return
	}

	report, err := h.importer.Import(r.Context(), datanorm.ImportRequest{
		Filename:     filename,
		Data:         data,
		Mappings:     mappings,
		CustomFields: custom,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to import data")
		return
	}
	httputil.OK(w, report)
}

// HandleImportPreview parses an upload without importing it and suggests a
// column mapping.
//
//	POST /api/admin/import/preview  (multipart: file, customFields)
func (h *Handlers) HandleImportPreview(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	custom, ok := h.requestCustomFields(w, r)
	if !ok {
		return
	}

	preview, err := datanorm.BuildPreview(filename, data, custom)
	if err != nil {
		respondServiceError(w, err, "Failed to preview file")
		return
	}
	httputil.OK(w, preview)
}

// HandleImportFields returns the mapping targets and enumerations the
// import screen offers.
//
//	GET /api/admin/import/fields
func (h *Handlers) HandleImportFields(w http.ResponseWriter, r *http.Request) {
	custom := []domain.CustomField{}
	if h.customFields != nil {
		var err error
		if custom, err = h.customFields.List(r.Context()); err != nil {
			respondSafeError(w, http.StatusInternalServerError, err, "Failed to load custom fields")
			return
		}
	}

	httputil.OK(w, map[string]any{
		"standardFields": domain.StandardFields(),
		"customFields":   custom,
		"products":       domain.ProductIDs,
		"nationalities":  domain.Nationalities,
		"states":         domain.States,
		"ratings":        domain.Ratings,
		"statuses":       domain.Statuses,
	})
}

// readUpload parses the multipart form and returns the "file" part. On
// failure the response has been written.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Error(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB", h.maxUploadBytes>>20))
			return "", nil, false
		}
		httputil.BadRequest(w, "File and mappings are required")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "File and mappings are required")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to read upload")
		return "", nil, false
	}
	return header.Filename, data, true
}

// requestCustomFields returns the customFields form part, or the registered
// custom fields when the part is absent, so an import accepts every target
// its preview suggested. On failure the response has been written.
func (h *Handlers) requestCustomFields(w http.ResponseWriter, r *http.Request) ([]domain.CustomField, bool) {
	custom, err := parseCustomFields(r.FormValue("customFields"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, false
	}
	if custom == nil && h.customFields != nil {
		if custom, err = h.customFields.List(r.Context()); err != nil {
			respondSafeError(w, http.StatusInternalServerError, err, "Failed to load custom fields")
			return nil, false
		}
	}
	return custom, true
}

func parseCustomFields(raw string) ([]domain.CustomField, error) {
	if raw == "" {
		return nil, nil
	}
	var fields []domain.CustomField
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("invalid customFields: %v", err)
	}
	return fields, nil
}
