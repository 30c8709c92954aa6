package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing corpus file or index cache.
	ErrConfiguration = errors.New("configuration error")
	// ErrModelLoad marks an embedding model that could not be loaded.
	ErrModelLoad = errors.New("embedding model load failed")
	// ErrNoCandidates means neither an index nor a corpus is available.
	ErrNoCandidates = errors.New("no candidate texts available")
	// ErrExtraction marks a failed upstream LLM extraction.
	ErrExtraction = errors.New("design extraction failed")
	// ErrNotFound means no stored check exists for a plan.
	ErrNotFound = errors.New("not found")
)

// MalformedRecordError reports a corpus row that could not be parsed. The row
// is skipped and indexing continues.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed corpus record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
