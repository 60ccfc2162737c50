package datanorm

import "strings"

const utf8BOM = "\ufeff"

// ParseCSV converts CSV text into rows keyed by the header row.
//
// Quoted fields may contain commas, raw newlines and "" escapes. Unbalanced
// quotes are not an error: everything after the stray quote is read as quoted
// content. Rows whose cells are all empty are dropped, and fewer than two
// remaining rows (header plus data) yields no rows at all.
func ParseCSV(text string) []Row {
	records := tokenize(strings.TrimPrefix(text, utf8BOM))
	if len(records) < 2 {
		return []Row{}
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Headers returns the trimmed header row of CSV text, or nil when the text has
// no non-empty row.
func Headers(text string) []string {
	records := tokenize(strings.TrimPrefix(text, utf8BOM))
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

// tokenize is a byte-level state machine. Every delimiter is ASCII, so
// multi-byte UTF-8 sequences pass through untouched.
func tokenize(text string) [][]string {
	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		record = append(record, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRecord := func() {
		endField()
		if !allEmpty(record) {
			records = append(records, record)
		}
		record = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case inQuotes:
			field.WriteByte(c)
		case c == ',':
			endField()
		case c == '\r' || c == '\n':
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRecord()
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(record) > 0 {
		endRecord()
	}
	return records
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
