package domain

// FieldMapping binds a source column of an uploaded file to an enquiry
// attribute (or a custom field key).
type FieldMapping struct {
	SourceField string `json:"sourceField"`
	TargetField string `json:"targetField"`
	IsRequired  bool   `json:"isRequired"`
}

// Active reports whether the mapping targets anything.
func (m FieldMapping) Active() bool { return m.TargetField != "" }

// CustomField is an admin-defined attribute captured at import time and
// stored in the enquiry's followUpInfo sidecar.
type CustomField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// CustomFieldValue is one entry of the followUpInfo JSON blob.
type CustomFieldValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ImportReport is the per-call outcome of an import run. It is never persisted.
type ImportReport struct {
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails"`
	Message      string   `json:"message"`
	TotalRecords int      `json:"totalRecords"`
}
