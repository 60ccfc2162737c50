package customfield

import "errors"

// Sentinel errors for the custom field service layer.
var (
	ErrNotFound         = errors.New("custom field not found")
	ErrFieldExists      = errors.New("custom field already exists")
	ErrInvalidFieldName = errors.New("invalid field name")
	ErrLabelRequired    = errors.New("field name and label are required")
	ErrReservedName     = errors.New("field name is a standard enquiry field")
)
