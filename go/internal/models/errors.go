package models

import "errors"

// Storage errors shared by every backend.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("unique constraint violation")
)
