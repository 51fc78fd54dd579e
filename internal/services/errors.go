// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all services. Handlers map these onto HTTP
// statuses with errors.Is / errors.As.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidCode  = errors.New("invalid code")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
)

// DuplicatePendingError is returned by CreateApplication when the email
// already has a pending application; it carries the existing identifiers
// so the caller can resume that application instead.
type DuplicatePendingError struct {
	CartID        string
	ApplicationID string
}

func (e *DuplicatePendingError) Error() string {
	return fmt.Sprintf("a pending application already exists with cart ID %s", e.CartID)
}

func (e *DuplicatePendingError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidStateError reports the status that blocked a transition.
type InvalidStateError struct {
	Operation     string
	CurrentStatus string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed from status %q", e.Operation, e.CurrentStatus)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
