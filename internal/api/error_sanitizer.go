package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/enquiry-crm/internal/datanorm"
	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
	"github.com/ignite/enquiry-crm/internal/service/backup"
	"github.com/ignite/enquiry-crm/internal/service/customfield"
	"github.com/ignite/enquiry-crm/internal/service/duplicates"
	"github.com/ignite/enquiry-crm/internal/service/maintenance"
)

// =============================================================================
// ERROR SANITIZER
// Service sentinels map onto 4xx responses carrying the sentinel text.
// Anything else is logged in full and answered with a generic message so
// database details never reach the client.
// =============================================================================

var (
	badRequestErrors = []error{
		datanorm.ErrUnsupportedFormat,
		datanorm.ErrInvalidJSON,
		datanorm.ErrNoMappings,
		datanorm.ErrUnknownTarget,
		duplicates.ErrInvalidAction,
		duplicates.ErrInvalidIDs,
		customfield.ErrLabelRequired,
		customfield.ErrInvalidFieldName,
		customfield.ErrReservedName,
		maintenance.ErrInvalidAction,
	}
	notFoundErrors = []error{backup.ErrNotFound, customfield.ErrNotFound}
	conflictErrors = []error{customfield.ErrFieldExists}
)

// respondServiceError writes the response for an error returned by a
// service. publicMsg is used for unexpected errors.
func respondServiceError(w http.ResponseWriter, err error, publicMsg string) {
	switch {
	case matchesAny(err, badRequestErrors):
		httputil.BadRequest(w, err.Error())
	case matchesAny(err, notFoundErrors):
		httputil.NotFound(w, err.Error())
	case matchesAny(err, conflictErrors):
		httputil.Conflict(w, err.Error())
	default:
		respondSafeError(w, http.StatusInternalServerError, err, publicMsg)
	}
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondSafeError logs the full internal error and sends a sanitized JSON
// error response.
func respondSafeError(w http.ResponseWriter, code int, internalErr error, publicMsg string) {
	if internalErr != nil {
		logger.Error(publicMsg, "status", code, "error", internalErr)
	}
	if publicMsg == "" {
		publicMsg = safeErrorMessage(code, internalErr)
	}
	httputil.Error(w, code, publicMsg)
}

// safeErrorMessage maps common internal error patterns to public-safe
// messages. 4xx errors are about user input and are passed through.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}
	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())
	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "transaction") ||
		strings.Contains(errStr, "database"):
		return "A database error occurred"

	default:
		return "An internal error occurred"
	}
}
