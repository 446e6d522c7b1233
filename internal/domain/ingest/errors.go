package ingest

import (
	"errors"
	"fmt"
)

// ErrReportNotFound marks an ingestion aimed at a report that does not exist
// or is not owned by the caller's scope. No side effects occur.
var ErrReportNotFound = errors.New("report not found")

// StructuralError rejects a malformed payload before any result is written.
// The wrapped cause names the offending constraint.
type StructuralError struct {
	Cause error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural payload error: %v", e.Cause)
}

func (e *StructuralError) Unwrap() error { return e.Cause }

// PersistenceError marks a failed atomic replace. The transaction rolled back
// in full, so the report's prior results and status are intact and the whole
// ingestion is safe to retry.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ingestion persistence failure: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }
