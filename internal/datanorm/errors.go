package datanorm

import "errors"

// Whole-request failures. Row-level problems are reported in the
// ImportReport instead.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format, please use CSV or JSON")
	ErrInvalidJSON       = errors.New("invalid JSON file")
	ErrNoMappings        = errors.New("at least one field mapping is required")
	ErrUnknownTarget     = errors.New("unknown target field")
)
