package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrNoEligibleItems = NewDomainError("NO_ELIGIBLE_ITEMS", "No arrived, unconsolidated order items are selected")
	ErrIdentityMissing = NewDomainError("IDENTITY_MISSING", "Customer has no messaging identity")
	ErrExternalCall    = NewDomainError("EXTERNAL_CALL_FAILED", "External ledger call failed")
	ErrRunInProgress   = NewDomainError("RUN_IN_PROGRESS", "A consolidation run is already in progress")
	ErrTerminalRecord  = NewDomainError("TERMINAL_RECORD", "Record is already consolidated and cannot be changed")
)

// CodeOf returns the domain error code carried by err, or "" if none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
