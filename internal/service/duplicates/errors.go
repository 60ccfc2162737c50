package duplicates

import "errors"

// Sentinel errors for the duplicates service layer.
var (
	ErrInvalidAction = errors.New("invalid action or missing duplicateIds")
	ErrInvalidIDs    = errors.New("duplicateIds must be a list of positive ids")
)
