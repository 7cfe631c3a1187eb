package repository

import "errors"

var (
	// ErrNotFound is returned when a record referenced by id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrExtractionFailed is the single error kind reported by an Extractor,
	// whether the cause is the network, the remote service or a schema mismatch.
	ErrExtractionFailed = errors.New("extraction failed")
)
