package consolidation

import (
	"fmt"

	"github.com/opsconsole/backend/internal/domain/shared"
)

// ValidationError blocks a run before any external call
type ValidationError struct {
	Cause *shared.DomainError
}

func (e *ValidationError) Error() string {
	return "consolidation: " + e.Cause.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError wraps a domain error as a validation failure
func NewValidationError(cause *shared.DomainError) *ValidationError {
	return &ValidationError{Cause: cause}
}

// IdentityMissingError marks a unit whose customer has no messaging identity
type IdentityMissingError struct {
	MemberID     string
	CustomerName string
}

func (e *IdentityMissingError) Error() string {
	return fmt.Sprintf("consolidation: customer %q (%s) has no messaging identity", e.CustomerName, e.MemberID)
}

func (e *IdentityMissingError) Unwrap() error {
	return shared.ErrIdentityMissing
}

// ExternalCallError marks a unit whose contact lookup, create or link call failed
type ExternalCallError struct {
	Step     FailureReason
	MemberID string
	Cause    *shared.DomainError
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("consolidation: %s failed for member %s: %s", e.Step, e.MemberID, e.Cause.Message)
}

func (e *ExternalCallError) Unwrap() []error {
	return []error{shared.ErrExternalCall, e.Cause}
}
