package domain

import "errors"

// Sentinel errors raised by the core when an invariant is violated.
// Handlers map these to HTTP status codes and machine-readable codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrDayLocked        = errors.New("daily entry day is locked")
	ErrDayAlreadyClosed = errors.New("day already closed for this branch")
	ErrDuplicateEntry   = errors.New("daily entry already exists for this employee and date")
	ErrNoEntriesToClose = errors.New("no daily entries to close")
	ErrBranchMismatch   = errors.New("employee does not belong to this branch")
	ErrNotPending       = errors.New("request is not pending")
)
