package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
	"github.com/ignite/enquiry-crm/internal/service/duplicates"
)

type duplicateScanResponse struct {
	Success bool `json:"success"`
	*domain.DuplicateScan
}

type removalResponse struct {
	Success bool `json:"success"`
	*domain.RemovalResult
}

// HandleScanDuplicates groups the whole record store. Nothing is cached; every
// call rescans.
//
//	GET /api/admin/duplicates
func (h *Handlers) HandleScanDuplicates(w http.ResponseWriter, r *http.Request) {
	scan, err := h.duplicates.Scan(r.Context())
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to analyze duplicates")
		return
	}
	httputil.OK(w, duplicateScanResponse{Success: true, DuplicateScan: scan})
}

// HandleRemoveDuplicates deletes exactly the ids the admin approved.
//
//	POST /api/admin/duplicates  {"action":"remove","duplicateIds":[...]}
func (h *Handlers) HandleRemoveDuplicates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action       string          `json:"action"`
		DuplicateIDs json.RawMessage `json:"duplicateIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, duplicates.ErrInvalidAction.Error())
		return
	}

	ids, ok := decodeIDList(req.DuplicateIDs)
	if !ok {
		httputil.BadRequest(w, duplicates.ErrInvalidAction.Error())
		return
	}

	result, err := h.duplicates.Remove(r.Context(), req.Action, ids)
	if err != nil {
		respondServiceError(w, err, "Failed to remove duplicates")
		return
	}
	httputil.OK(w, removalResponse{Success: true, RemovalResult: result})
}

// decodeIDList accepts only a JSON array of integers. A missing or null value
// decodes to a nil slice, which the service rejects.
func decodeIDList(raw json.RawMessage) ([]int64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}
	if trimmed[0] != '[' {
		return nil, false
	}
	ids := []int64{}
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return nil, false
	}
	return ids, true
}
