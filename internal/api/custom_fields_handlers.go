package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/httputil"
	"github.com/ignite/enquiry-crm/internal/service/customfield"
)

// =============================================================================
// CUSTOM FIELDS HANDLERS
// =============================================================================
// Custom fields are extra import targets. Their values end up in the
// enquiry's followUpInfo JSON, keyed by the cleaned field name.

// CustomFieldsAPI provides HTTP handlers for custom fields
type CustomFieldsAPI struct {
	service *customfield.Service
}

// NewCustomFieldsAPI creates a new custom fields API handler
func NewCustomFieldsAPI(svc *customfield.Service) *CustomFieldsAPI {
	return &CustomFieldsAPI{service: svc}
}

// RegisterRoutes registers custom field routes
func (api *CustomFieldsAPI) RegisterRoutes(r chi.Router) {
	r.Route("/custom-fields", func(r chi.Router) {
		r.Get("/", api.HandleListCustomFields)
		r.Post("/", api.HandleCreateCustomField)
		r.Delete("/{key}", api.HandleDeleteCustomField)
	})
}

type customFieldView struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	IsCustom bool   `json:"isCustom"`
}

func newCustomFieldView(f domain.CustomField) customFieldView {
	return customFieldView{Key: f.Key, Label: f.Label, IsCustom: true}
}

// HandleListCustomFields returns every custom field
// GET /api/admin/custom-fields
func (api *CustomFieldsAPI) HandleListCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := api.service.List(r.Context())
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to fetch custom fields")
		return
	}

	views := make([]customFieldView, 0, len(fields))
	for _, f := range fields {
		views = append(views, newCustomFieldView(f))
	}
	httputil.OK(w, map[string]any{"customFields": views})
}

// HandleCreateCustomField creates a new custom field definition
// POST /api/admin/custom-fields  {"fieldName": "...", "fieldLabel": "..."}
func (api *CustomFieldsAPI) HandleCreateCustomField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FieldName  string `json:"fieldName"`
		FieldLabel string `json:"fieldLabel"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}

	field, err := api.service.Create(r.Context(), req.FieldName, req.FieldLabel)
	if err != nil {
		respondServiceError(w, err, "Failed to create custom field")
		return
	}
	httputil.OK(w, map[string]any{
		"message": "Custom field created successfully",
		"field":   newCustomFieldView(field),
	})
}

// HandleDeleteCustomField removes a custom field definition. Values already
// stored on enquiries are left alone.
// DELETE /api/admin/custom-fields/{key}
func (api *CustomFieldsAPI) HandleDeleteCustomField(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		httputil.BadRequest(w, "Field name is required")
		return
	}
	if err := api.service.Delete(r.Context(), key); err != nil {
		respondServiceError(w, err, "Failed to delete custom field")
		return
	}
	httputil.OK(w, map[string]string{"message": "Custom field deleted successfully"})
}
