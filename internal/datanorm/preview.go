package datanorm

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/ignite/enquiry-crm/internal/domain"
)

const previewSampleSize = 5

// Preview describes an uploaded file before anything is imported.
type Preview struct {
	Headers           []string              `json:"headers"`
	SuggestedMappings []domain.FieldMapping `json:"suggestedMappings"`
	TotalRecords      int                   `json:"totalRecords"`
	Sample            []Row                 `json:"sample"`
}

// BuildPreview parses the file the same way Import does and proposes a
// mapping for every column. Nothing is persisted.
func BuildPreview(filename string, data []byte, custom []domain.CustomField) (*Preview, error) {
	rows, err := ParseFile(filename, data)
	if err != nil {
		return nil, err
	}

	var headers []string
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		headers = Headers(string(data))
	} else {
		headers = jsonKeys(data)
	}
	if headers == nil {
		headers = []string{}
	}

	sample := rows
	if sample == nil {
		sample = []Row{}
	}
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}

	return &Preview{
		Headers:           headers,
		SuggestedMappings: SuggestMappings(headers, custom),
		TotalRecords:      len(rows),
		Sample:            sample,
	}, nil
}

// jsonKeys returns the union of top-level object keys in first-seen order.
// Go maps lose key order, so the document is walked token by token.
func jsonKeys(data []byte) []string {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte(utf8BOM)))

	var objects []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &objects); err != nil {
			return nil
		}
	} else {
		objects = []json.RawMessage{trimmed}
	}

	seen := make(map[string]bool)
	var keys []string
	for _, raw := range objects {
		dec := json.NewDecoder(bytes.NewReader(raw))
		if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
			continue
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			key, _ := tok.(string)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				break
			}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}
