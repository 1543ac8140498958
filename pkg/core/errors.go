package core

import "errors"

// Common errors.
var (
	ErrInvalidKey        = errors.New("invalid document key")
	ErrInvalidFormat     = errors.New("invalid notebook format")
	ErrNotFound          = errors.New("document not found")
	ErrNoHistory         = errors.New("document has no revision history")
	ErrEmptyHistory      = errors.New("revision history has no commits")
	ErrMalformedDocument = errors.New("malformed document")
	ErrReadOnly          = errors.New("repository is in read-only mode")
)
