package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store operations that reference a nonexistent
// component identifier. It is never retried; the web layer maps it to 404.
var ErrNotFound = errors.New("component not found")

// UnsupportedFormatError indicates the uploaded file's extension is not
// recognized by any parser. The whole batch aborts with zero records.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s (expected .csv, .json, .xlsx, or .xls)", e.Ext)
}

// ValidationError is a per-row failure. It carries the 1-based row index so
// users can fix only the failing rows and re-upload a trimmed file.
// It never halts the batch.
type ValidationError struct {
	Row     int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}
