package backup

import "errors"

// Sentinel errors for the backup service layer.
var (
	ErrNotFound       = errors.New("backup not found")
	ErrCorruptPayload = errors.New("backup payload is not a snapshot document")
)
