package common

import "errors"

// Every failure reported by the pipelines wraps one of these, use errors.Is
// to tell them apart. None of them is retried.
var (
	// ErrInputNotFound - source file is missing or cannot be read.
	ErrInputNotFound = errors.New("input not found")
	// ErrValidation - source document does not follow placeholder conventions.
	ErrValidation = errors.New("validation error")
	// ErrRendering - rendering or rasterization failed.
	ErrRendering = errors.New("rendering failure")
	// ErrMalformedTemplate - template document cannot be deserialized or misses required fields.
	ErrMalformedTemplate = errors.New("malformed template document")
)
