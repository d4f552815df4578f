package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes callers are expected to
// distinguish. Producers wrap them with fmt.Errorf("%w: ...") to add
// detail; consumers test with errors.Is.
var (
	// ErrInvalidConfig marks configuration that can never work, such as
	// a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIndexNotFound is returned by the index store when no persisted
	// index exists at the configured location.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexUnavailable marks a question asked before any successful
	// ingestion. The remedy is to index documents first.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrCorruptIndex marks a persisted index that failed integrity
	// checks on load. Corrupt indexes are never repaired automatically;
	// re-ingestion replaces them.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrGenerationFailed marks a model execution failure. Tokens already
	// streamed before the failure are not retracted.
	ErrGenerationFailed = errors.New("generation failed")
)

// ParseError reports a file that matched a supported extension but could
// not be parsed. Ingestion records it and continues with the remaining
// files rather than aborting the run.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
