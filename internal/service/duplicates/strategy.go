package duplicates

import (
	"strings"
	"unicode"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// Strategy derives a match key for an enquiry. An empty key means the
// enquiry does not take part in this strategy.
type Strategy interface {
	Type() string
	Key(e domain.Enquiry) string
	GroupID(key string) string
	Criteria(key string, first domain.Enquiry) string
	// Exclusive strategies claim their group members so later strategies
	// never see them.
	Exclusive() bool
}

// DefaultStrategies is the grouping order used by scans.
func DefaultStrategies() []Strategy {
	return []Strategy{EmailStrategy{}, NamePhoneStrategy{}}
}

// EmailStrategy matches on the trimmed, lower-cased email address.
type EmailStrategy struct{}

func (EmailStrategy) Type() string { return domain.MatchEmail }

func (EmailStrategy) Key(e domain.Enquiry) string {
	return strings.ToLower(strings.TrimSpace(e.Email))
}

func (EmailStrategy) GroupID(key string) string { return "email_" + key }

func (EmailStrategy) Criteria(key string, _ domain.Enquiry) string { return "Email: " + key }

func (EmailStrategy) Exclusive() bool { return true }

// NamePhoneStrategy matches on first name, last name and the phone number
// with all whitespace removed. Both first name and phone must be present.
type NamePhoneStrategy struct{}

func (NamePhoneStrategy) Type() string { return domain.MatchNamePhone }

func (NamePhoneStrategy) Key(e domain.Enquiry) string {
	if e.FirstName == "" || e.Phone == "" {
		return ""
	}
	first := strings.ToLower(strings.TrimSpace(e.FirstName))
	last := strings.ToLower(strings.TrimSpace(e.LastName))
	return first + "_" + last + "_" + stripSpace(e.Phone)
}

func (NamePhoneStrategy) GroupID(key string) string { return "namephone_" + key }

func (NamePhoneStrategy) Criteria(_ string, first domain.Enquiry) string {
	return first.FirstName + " " + first.LastName + " + " + first.Phone
}

func (NamePhoneStrategy) Exclusive() bool { return false }

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Group partitions records under each strategy in turn. records must already
// be in store order (newest first); that order decides which member is kept.
// Groups come out in strategy order, then in order of first appearance of
// their key.
func Group(records []domain.Enquiry, strategies ...Strategy) []domain.DuplicateGroup {
	groups := []domain.DuplicateGroup{}
	processed := make(map[int64]bool)

	for _, s := range strategies {
		var order []string
		buckets := make(map[string][]domain.Enquiry)
		for _, e := range records {
			if processed[e.ID] {
				continue
			}
			key := s.Key(e)
			if key == "" {
				continue
			}
			if _, seen := buckets[key]; !seen {
				order = append(order, key)
			}
			buckets[key] = append(buckets[key], e)
		}

		for _, key := range order {
			members := buckets[key]
			if len(members) < 2 {
				continue
			}
			groups = append(groups, newGroup(s, key, members))
			if s.Exclusive() {
				for _, e := range members {
					processed[e.ID] = true
				}
			}
		}
	}
	return groups
}

func newGroup(s Strategy, key string, members []domain.Enquiry) domain.DuplicateGroup {
	entries := make([]domain.DuplicateEntry, len(members))
	for i, e := range members {
		entries[i] = domain.NewDuplicateEntry(e)
	}
	return domain.DuplicateGroup{
		ID:          s.GroupID(key),
		Type:        s.Type(),
		Criteria:    s.Criteria(key, members[0]),
		Count:       len(members),
		Enquiries:   entries,
		Recommended: entries[1:],
	}
}

// Summarize computes the scan statistics. UniqueRecords plus
// PotentialSavings always equals TotalEnquiries.
func Summarize(total int, groups []domain.DuplicateGroup) domain.DuplicateSummary {
	dupes := 0
	for _, g := range groups {
		dupes += g.Count
	}
	return domain.DuplicateSummary{
		TotalEnquiries:   total,
		DuplicateGroups:  len(groups),
		TotalDuplicates:  dupes,
		UniqueRecords:    total - dupes + len(groups),
		PotentialSavings: dupes - len(groups),
	}
}
