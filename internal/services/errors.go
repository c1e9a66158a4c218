package services

import "errors"

var (
	// ErrNotFound is returned when a managed or live table does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for requests rejected before any I/O.
	ErrValidation = errors.New("validation failed")
)
