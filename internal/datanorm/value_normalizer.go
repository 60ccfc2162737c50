package datanorm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ignite/enquiry-crm/internal/domain"
	"golang.org/x/text/cases"
)

// FieldNormalizer converts a trimmed, non-blank raw value into its stored form.
// Returning false drops the field.
type FieldNormalizer func(raw string) (string, bool)

// fieldNormalizers is keyed by enquiry field name. Fields missing from the
// table pass through trimmed.
var fieldNormalizers = map[string]FieldNormalizer{
	"productInterest":    normalizeProductInterest,
	"doNotEmail":         normalizeBool,
	"createdAt":          normalizeDate,
	"bestTimeToFollowUp": normalizeDate,
	"inputDate":          normalizeDate,
	"lastUpdate":         normalizeDate,
	"originalFupDate":    normalizeDate,
	"nationality":        normalizeNationality,
	"state":              normalizeState,
	"customerRating":     normalizeRating,
	"classification":     normalizeClassification,
	"status":             normalizeStatus,
}

// NormalizeField applies the normalization rule for field to raw. Blank
// values and the literal NULL always drop the field.
func NormalizeField(field, raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if isBlank(v) {
		return "", false
	}
	if fn, ok := fieldNormalizers[field]; ok {
		return fn(v)
	}
	return v, true
}

func isBlank(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "NULL")
}

// enumIndex maps case-folded values onto their canonical spelling.
type enumIndex map[string]string

func newEnumIndex(values ...string) enumIndex {
	idx := make(enumIndex, len(values))
	for _, v := range values {
		idx[fold(v)] = v
	}
	return idx
}

func (idx enumIndex) lookup(v string) (string, bool) {
	canonical, ok := idx[fold(v)]
	return canonical, ok
}

// fold builds a fresh Caser per call; a Caser carries state and must not be
// shared between goroutines.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

var (
	productIndex     = newEnumIndex(domain.ProductIDs...)
	nationalityIndex = newEnumIndex(domain.Nationalities...)
	ratingIndex      = newEnumIndex(domain.Ratings...)
	stateAbbrevIndex = func() enumIndex {
		idx := make(enumIndex, len(domain.States))
		for _, s := range domain.States {
			idx[fold(s.Abbreviation)] = s.Name
		}
		return idx
	}()
	statusIndex = enumIndex{
		"new":       string(domain.StatusNew),
		"sold":      string(domain.StatusSold),
		"finalised": string(domain.StatusFinalised),
		"finalized": string(domain.StatusFinalised),
	}
)

// normalizeProductInterest keeps known product ids in input order. When none
// match, the whole lower-cased input is kept so a non-empty value is never
// silently emptied.
func normalizeProductInterest(v string) (string, bool) {
	var tokens []string
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		var items []any
		if err := json.Unmarshal([]byte(v), &items); err == nil {
			for _, item := range items {
				tokens = append(tokens, fmt.Sprint(item))
			}
		}
	} else {
		tokens = strings.Split(v, ",")
	}

	seen := make(map[string]bool, len(tokens))
	var products []string
	for _, t := range tokens {
		p, ok := productIndex.lookup(strings.ToLower(t))
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		products = append(products, p)
	}

	if len(products) == 0 {
		return strings.ToLower(v), true
	}
	return strings.Join(products, ", "), true
}

func normalizeBool(v string) (string, bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return "true", true
	default:
		return "false", true
	}
}

func normalizeNationality(v string) (string, bool) {
	if n, ok := nationalityIndex.lookup(v); ok {
		return n, true
	}
	return v, true
}

// normalizeState resolves abbreviations before name matching, so "nsw" wins
// over any substring candidate.
func normalizeState(v string) (string, bool) {
	if name, ok := stateAbbrevIndex.lookup(v); ok {
		return name, true
	}
	key := fold(v)
	for _, s := range domain.States {
		name := fold(s.Name)
		if name == key || strings.Contains(name, key) {
			return s.Name, true
		}
	}
	return v, true
}

func normalizeRating(v string) (string, bool) {
	if r, ok := ratingIndex.lookup(v); ok {
		return r, true
	}
	return domain.NotApplicable, true
}

func normalizeClassification(v string) (string, bool) {
	if r, ok := ratingIndex.lookup(v); ok {
		return r, true
	}
	return v, true
}

func normalizeStatus(v string) (string, bool) {
	if s, ok := statusIndex[fold(v)]; ok {
		return s, true
	}
	return string(domain.StatusNew), true
}
