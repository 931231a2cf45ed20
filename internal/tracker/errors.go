package tracker

import "errors"

// Sentinel errors shared by the tracker, its persistence layer and the
// import/export codec. Callers match them with errors.Is.
var (
	ErrDuplicateName      = errors.New("category already exists")
	ErrNotFound           = errors.New("category not found")
	ErrEmptyName          = errors.New("category name is empty")
	ErrInvalidColor       = errors.New("invalid color")
	ErrInvalidDuration    = errors.New("invalid timer duration")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
