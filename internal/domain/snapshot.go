package domain

import (
	"fmt"
	"time"
)

// SnapshotType distinguishes automatic from admin-requested snapshots.
type SnapshotType string

const (
	SnapshotAuto   SnapshotType = "Auto"
	SnapshotManual SnapshotType = "Manual"
)

// SnapshotVersion is written into every snapshot payload.
const SnapshotVersion = "1.0"

// Snapshot is the metadata of one full-store backup.
type Snapshot struct {
	ID           int64        `json:"id"`
	SizeKB       int          `json:"sizeKb"`
	Type         SnapshotType `json:"type"`
	Status       string       `json:"status"`
	EnquiryCount int          `json:"enquiryCount"`
	Trigger      string       `json:"trigger"`
	ArchiveKey   string       `json:"archiveKey,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SizeDescriptor renders the snapshot size the way the admin UI shows it.
func (s Snapshot) SizeDescriptor() string {
	return FormatSizeKB(s.SizeKB)
}

// FormatSizeKB renders a KB count as "N KB", or "N.N MB" above 1024 KB.
func FormatSizeKB(kb int) string {
	if kb > 1024 {
		return fmt.Sprintf("%.1f MB", float64(kb)/1024)
	}
	return fmt.Sprintf("%d KB", kb)
}

// SnapshotPayload is the JSON document stored for each snapshot.
type SnapshotPayload struct {
	Enquiries []Enquiry `json:"enquiries"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Trigger   string    `json:"trigger"`
}

// SnapshotResult is returned by snapshot creation. Skipped is set when the
// throttle policy decided no snapshot was needed.
type SnapshotResult struct {
	Snapshot *Snapshot `json:"backup,omitempty"`
	Size     string    `json:"size,omitempty"`
	Skipped  bool      `json:"skipped,omitempty"`
	Reason   string    `json:"reason,omitempty"`
}
