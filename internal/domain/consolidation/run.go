package consolidation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/trade"
)

// Outcome classifies a settled run
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomePartial   Outcome = "partial"
	OutcomeAllFailed Outcome = "all_failed"
)

// UnitStatus is the result of one consolidation unit
type UnitStatus string

const (
	UnitSucceeded UnitStatus = "succeeded"
	UnitFailed    UnitStatus = "failed"
)

// FailureReason names the step a unit failed at
type FailureReason string

const (
	ReasonNone            FailureReason = ""
	ReasonIdentityMissing FailureReason = "identity_missing"
	ReasonCreateCheckout  FailureReason = "create_checkout"
	ReasonLinkOrderItems  FailureReason = "link_order_items"
	ReasonResolveContacts FailureReason = "resolve_contacts"
)

// UnitResult records what happened to one customer's unit.
// A unit that failed at link_order_items keeps the orphaned CheckoutID.
type UnitResult struct {
	MemberID     string
	CustomerName string
	ItemIDs      []uuid.UUID
	Status       UnitStatus
	CheckoutID   *uuid.UUID
	Reason       FailureReason
	Message      string
}

// Succeeded returns true if both calls of the unit succeeded
func (u *UnitResult) Succeeded() bool {
	return u.Status == UnitSucceeded
}

// Run is the record of one settled consolidation run
type Run struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	OperatorID     string
	ShippingMethod trade.ShippingMethod
	Outcome        Outcome
	SelectedCount  int
	EligibleCount  int
	SkippedCount   int
	RefreshFailed  bool
	Units          []UnitResult
	StartedAt      time.Time
	SettledAt      time.Time
}

// NewRun starts a run record
func NewRun(tenantID uuid.UUID, operatorID string, method trade.ShippingMethod, startedAt time.Time) *Run {
	return &Run{
		ID:             uuid.New(),
		TenantID:       tenantID,
		OperatorID:     operatorID,
		ShippingMethod: method,
		StartedAt:      startedAt,
	}
}

// SucceededCount returns the number of succeeded units
func (r *Run) SucceededCount() int {
	n := 0
	for i := range r.Units {
		if r.Units[i].Succeeded() {
			n++
		}
	}
	return n
}

// FailedUnits returns the units that failed, in run order
func (r *Run) FailedUnits() []UnitResult {
	failed := make([]UnitResult, 0)
	for i := range r.Units {
		if !r.Units[i].Succeeded() {
			failed = append(failed, r.Units[i])
		}
	}
	return failed
}

// Settle classifies the run and stamps the settle time
func (r *Run) Settle(at time.Time) {
	r.SettledAt = at
	r.Outcome = Classify(r.SucceededCount(), len(r.Units))
}

// Duration returns how long the run took
func (r *Run) Duration() time.Duration {
	if r.SettledAt.IsZero() {
		return 0
	}
	return r.SettledAt.Sub(r.StartedAt)
}

// Classify maps unit counts to an outcome
func Classify(succeeded, total int) Outcome {
	switch {
	case total > 0 && succeeded == total:
		return OutcomeSuccess
	case succeeded > 0:
		return OutcomePartial
	default:
		return OutcomeAllFailed
	}
}

// RunRepository stores settled runs
type RunRepository interface {
	Save(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Run, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Run, error)
}
