package models

import "errors"

// Sentinel errors shared across services and mapped to HTTP statuses at the
// handler layer. Services wrap these with fmt.Errorf("...: %w", Err...).
var (
	// ErrInvalidConfiguration marks rejected input or settings (bad chunking
	// parameters, empty queries, malformed requests).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrExtractionFailed marks a document whose text could not be extracted
	// or that yielded no usable text.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingUnavailable marks an embedding call that failed after all
	// retries were exhausted.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrCompositionUnavailable marks an answer-composition call that failed
	// after all retries were exhausted.
	ErrCompositionUnavailable = errors.New("composition unavailable")

	// ErrDuplicateEntry marks an attempt to register an entry whose ID is
	// already present.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrDimensionMismatch marks a vector whose length does not match the
	// index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNotFound marks a document or chunk that does not exist.
	ErrNotFound = errors.New("not found")
)
