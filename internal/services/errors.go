// Package services contains business logic layers.
// Services are called by handlers and interact with the store, the blob
// store and the classification oracle.
package services

import "errors"

// Error taxonomy surfaced to handlers. Wrap with fmt.Errorf("%w: ...").
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)
