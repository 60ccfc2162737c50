package maintenance

import "errors"

// ErrInvalidAction is returned for an action other than clean, integrity or
// optimize.
var ErrInvalidAction = errors.New("invalid action")
