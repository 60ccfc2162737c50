package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
	"github.com/ignite/enquiry-crm/internal/service/backup"
)

type snapshotView struct {
	domain.Snapshot
	Size string `json:"size"`
}

func newSnapshotView(s domain.Snapshot) snapshotView {
	return snapshotView{Snapshot: s, Size: s.SizeDescriptor()}
}

// HandleListBackups returns snapshot metadata, newest first.
//
//	GET /api/admin/backups
func (h *Handlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.backups.List(r.Context())
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to fetch backups")
		return
	}
	views := make([]snapshotView, 0, len(snaps))
	for _, s := range snaps {
		views = append(views, newSnapshotView(s))
	}
	httputil.OK(w, map[string]any{"success": true, "backups": views})
}

// HandleCreateBackup takes a manual snapshot.
//
//	POST /api/admin/backups  {"trigger": "..."} (optional)
func (h *Handlers) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	trigger, ok := decodeTrigger(w, r)
	if !ok {
		return
	}
	result, err := h.backups.CreateManual(r.Context(), trigger)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to create backup")
		return
	}
	httputil.OK(w, map[string]any{
		"success": true,
		"message": "Backup created successfully",
		"backup":  newSnapshotView(*result.Snapshot),
	})
}

// HandleScheduledBackup takes an automatic snapshot labelled "Scheduled
// backup". It is what an external cron calls when cmd/worker is not
// deployed. The request body is ignored so a caller cannot pick a label
// that bypasses the throttle.
//
//	POST /api/admin/backups/scheduled
func (h *Handlers) HandleScheduledBackup(w http.ResponseWriter, r *http.Request) {
	result, err := h.backups.CreateSnapshot(r.Context(), backup.TriggerScheduled)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to create scheduled backup")
		return
	}
	if result.Skipped {
		httputil.OK(w, map[string]any{"success": true, "skipped": true, "message": result.Reason})
		return
	}
	httputil.OK(w, map[string]any{
		"success": true,
		"message": "Scheduled backup created successfully",
		"backup":  newSnapshotView(*result.Snapshot),
	})
}

// HandleDownloadBackup streams the snapshot payload as an attachment.
//
//	GET /api/admin/backups/{id}/download
func (h *Handlers) HandleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := backupID(w, r)
	if !ok {
		return
	}
	data, err := h.backups.Data(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch backup")
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(data)
	}

	filename := fmt.Sprintf("backup_%d_%s.json", id, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pretty.Bytes())
}

// HandleRestoreBackup replaces every enquiry with the snapshot contents.
//
//	PUT /api/admin/backups/{id}/restore
func (h *Handlers) HandleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := backupID(w, r)
	if !ok {
		return
	}
	n, err := h.backups.Restore(r.Context(), id)
	if err != nil {
		if errors.Is(err, backup.ErrCorruptPayload) {
			httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondServiceError(w, err, "Failed to restore backup")
		return
	}
	httputil.OK(w, map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("Restored %d enquiries from backup #%d", n, id),
		"restoredCount": n,
	})
}

// HandleDeleteBackup removes a snapshot.
//
//	DELETE /api/admin/backups/{id}
func (h *Handlers) HandleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := backupID(w, r)
	if !ok {
		return
	}
	if err := h.backups.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete backup")
		return
	}
	httputil.OK(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Backup #%d deleted successfully", id),
	})
}

func backupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "Backup ID is required")
		return 0, false
	}
	return id, true
}

// decodeTrigger reads an optional {"trigger": "..."} body. An empty body is
// fine.
func decodeTrigger(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Trigger string `json:"trigger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return "", false
	}
	return strings.TrimSpace(req.Trigger), true
}
