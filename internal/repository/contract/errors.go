package contract

import "errors"

// ErrDuplicate is returned when a write hits a unique constraint
// (open-pair index, one conversation per match, one review per direction).
var ErrDuplicate = errors.New("duplicate key")
