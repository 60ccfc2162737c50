package api

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
	"github.com/ignite/enquiry-crm/internal/service/maintenance"
)

// HandleMaintenance runs one maintenance action on the enquiry store.
//
//	POST /api/admin/maintenance  {"action":"clean"|"integrity"|"optimize"}
func (h *Handlers) HandleMaintenance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, maintenance.ErrInvalidAction.Error())
		return
	}

	result, err := h.maintenance.Run(r.Context(), req.Action)
	if err != nil {
		respondServiceError(w, err, "Database maintenance failed")
		return
	}
	httputil.OK(w, map[string]any{
		"success": true,
		"message": result.Message,
		"details": result.Details,
	})
}
