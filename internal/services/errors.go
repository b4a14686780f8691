package services

import "errors"

// Sentinel errors for the membership core. Handlers map these to HTTP
// statuses; anything else is treated as a database/internal failure and
// surfaced as a generic 500.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("already exists")
	ErrInsufficientBalance  = errors.New("insufficient unallocated balance")
	ErrAllocationIncomplete = errors.New("allocation incomplete")
)
