package datanorm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseFile dispatches on the file extension.
func ParseFile(filename string, data []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(string(data)), nil
	case ".json":
		return ParseJSON(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseJSON accepts either an array of objects or a single object, which is
// treated as a one-element array. Scalars are stringified; nested arrays and
// objects are kept as JSON text so the field normalizers can read them.
func ParseJSON(data []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, fmt.Errorf("%w: expected an object or an array of objects", ErrInvalidJSON)
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		row := make(Row, len(obj))
		for k, v := range obj {
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
