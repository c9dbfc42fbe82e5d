package models

import "errors"

// Error categories every operation maps into. Handlers translate these
// to HTTP status codes; store code wraps driver errors around them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
