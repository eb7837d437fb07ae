package persona

import "errors"

// Sentinel errors for the persona registry.
var (
	ErrNotFound    = errors.New("persona not found")
	ErrDuplicateID = errors.New("persona already registered")
	ErrEmptyID     = errors.New("persona id is empty")
	ErrSealed      = errors.New("registry is sealed")
)
