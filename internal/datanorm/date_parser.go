package datanorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the timestamp format written for every normalized date.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var (
	dayFirstDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	isoDateTime  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})[ T](\d{1,2}):(\d{2})(?::(\d{2}))?`)
	isoDate      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)

	// null dates exported by legacy MySQL-backed spreadsheets
	nullDateMarkers = []string{"0000-00-00", "1000-01-01"}

	fallbackLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		time.ANSIC,
		"Mon Jan 2 2006",
		"2 January 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006/01/02",
		"2006.01.02",
		"02.01.2006",
		"02-01-2006",
	}
)

func normalizeDate(v string) (string, bool) {
	t, ok := ParseDate(v)
	if !ok {
		return "", false
	}
	return t.UTC().Format(ISOLayout), true
}

// ParseDate reads the date formats found in enquiry exports. Day-first
// slashed dates are tried before ISO forms, then a list of common layouts.
// All wall-clock values are taken as UTC.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, marker := range nullDateMarkers {
		if strings.Contains(v, marker) {
			return time.Time{}, false
		}
	}

	if m := dayFirstDate.FindStringSubmatch(v); m != nil {
		return civilDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), 0, 0, 0)
	}
	if m := isoDateTime.FindStringSubmatch(v); m != nil {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
		return civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
	}
	if m := isoDate.FindStringSubmatch(v); m != nil {
		return civilDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), 0, 0, 0)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// civilDate rejects components that time.Date would silently roll over,
// such as 31/02.
func civilDate(year, month, day, hour, min, sec int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
