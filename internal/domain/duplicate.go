package domain

import "time"

// Duplicate group types.
const (
	MatchEmail     = "Email Match"
	MatchNamePhone = "Name + Phone Match"
)

// DuplicateEntry is the projection of an Enquiry shown in a duplicate group.
type DuplicateEntry struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	State        string    `json:"state"`
	Suburb       string    `json:"suburb"`
	CreatedAt    time.Time `json:"createdAt"`
	ImportSource string    `json:"importSource"`
}

// NewDuplicateEntry projects an enquiry for display.
func NewDuplicateEntry(e Enquiry) DuplicateEntry {
	return DuplicateEntry{
		ID:           e.ID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Email:        e.Email,
		Phone:        e.Phone,
		State:        e.State,
		Suburb:       e.Suburb,
		CreatedAt:    e.CreatedAt,
		ImportSource: e.ImportSource,
	}
}

// DuplicateGroup is a set of enquiries sharing a match key. The first entry is
// kept; Recommended holds every other entry. Groups are recomputed on every
// scan and never persisted.
type DuplicateGroup struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Criteria    string           `json:"criteria"`
	Count       int              `json:"count"`
	Enquiries   []DuplicateEntry `json:"enquiries"`
	Recommended []DuplicateEntry `json:"recommended"`
}

// DuplicateSummary aggregates a scan.
type DuplicateSummary struct {
	TotalEnquiries   int `json:"totalEnquiries"`
	DuplicateGroups  int `json:"duplicateGroups"`
	TotalDuplicates  int `json:"totalDuplicates"`
	UniqueRecords    int `json:"uniqueRecords"`
	PotentialSavings int `json:"potentialSavings"`
}

// DuplicateScan is the result of one duplicate scan.
type DuplicateScan struct {
	Summary DuplicateSummary `json:"summary"`
	Groups  []DuplicateGroup `json:"duplicateGroups"`
}

// RemovalResult reports a bulk duplicate removal.
type RemovalResult struct {
	RemovedCount  int64  `json:"removedCount"`
	BackupCreated bool   `json:"backupCreated"`
	Message       string `json:"message"`
}
