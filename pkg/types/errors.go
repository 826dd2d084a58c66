package types

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify any error returned by a Backend.
var (
	ErrValidation     = errors.New("validation failed")
	ErrStore          = errors.New("store operation failed")
	ErrPartialReplace = errors.New("replace left partial state")
)

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// ValidationError reports malformed input. It is always returned before any
// store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation sentinels. Compare with errors.Is.
var (
	ErrMissingID         = &ValidationError{Field: "id", Reason: "must not be empty"}
	ErrDuplicateID       = &ValidationError{Field: "id", Reason: "must be unique within the tree"}
	ErrEmptyIDSet        = &ValidationError{Field: "ids", Reason: "must not be empty"}
	ErrInvalidTheme      = &ValidationError{Field: "appearance.theme", Reason: "must be light, dark, or system"}
	ErrInvalidLinkTarget = &ValidationError{Field: "navigation.linkTarget", Reason: "must be _blank or _self"}
	ErrMissingPath       = &ValidationError{Field: "path", Reason: "must not be empty"}
)

// StoreError wraps a failure of the underlying store with the operation that
// issued it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// PartialReplaceError reports a whole-document replace (the navigation tree
// or the metadata log) that failed after it had already changed stored rows.
// The document is incomplete until the replace is run again.
type PartialReplaceError struct {
	Target  string // "navigation" or "resource metadata"; empty means navigation
	Stage   string // "delete" or "insert"
	Written int    // rows inserted before the failure
	Total   int    // rows the replace intended to insert
	Err     error
}

func (e *PartialReplaceError) Error() string {
	target := e.Target
	if target == "" {
		target = "navigation"
	}
	return fmt.Sprintf("%s replace failed during %s after %d of %d rows: %v",
		target, e.Stage, e.Written, e.Total, e.Err)
}

func (e *PartialReplaceError) Unwrap() []error { return []error{ErrPartialReplace, e.Err} }
