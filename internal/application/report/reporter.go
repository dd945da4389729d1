// Package report turns the outcomes of bulk console actions into the
// summaries shown to the operator.
package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/consolidation"
)

// FailedUnit is one customer whose unit did not complete
type FailedUnit struct {
	MemberID     string     `json:"member_id"`
	CustomerName string     `json:"customer_name"`
	Reason       string     `json:"reason"`
	Message      string     `json:"message"`
	ItemCount    int        `json:"item_count"`
	CheckoutID   *uuid.UUID `json:"orphan_checkout_id,omitempty"`
}

// ConsolidationSummary is the operator-facing result of a run
type ConsolidationSummary struct {
	RunID         uuid.UUID    `json:"run_id"`
	Outcome       string       `json:"outcome"`
	Succeeded     int          `json:"succeeded"`
	FailedCount   int          `json:"failed_count"`
	Failed        []FailedUnit `json:"failed"`
	Skipped       int          `json:"skipped"`
	RefreshFailed bool         `json:"refresh_failed"`
	Message       string       `json:"message"`
}

// DeleteFailure is a record the ledger refused to delete
type DeleteFailure struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// DeleteTally accumulates per-record outcomes of a bulk delete
type DeleteTally struct {
	Hard    []uuid.UUID
	Soft    []uuid.UUID
	Skipped []uuid.UUID
	Failed  []DeleteFailure
}

func (t *DeleteTally) AddHard(id uuid.UUID)    { t.Hard = append(t.Hard, id) }
func (t *DeleteTally) AddSoft(id uuid.UUID)    { t.Soft = append(t.Soft, id) }
func (t *DeleteTally) AddSkipped(id uuid.UUID) { t.Skipped = append(t.Skipped, id) }

// AddFailed records a refused delete
func (t *DeleteTally) AddFailed(id uuid.UUID, code, message string) {
	t.Failed = append(t.Failed, DeleteFailure{ID: id, Code: code, Message: message})
}

// Removed returns the ids that are gone or soft-deleted
func (t *DeleteTally) Removed() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(t.Hard)+len(t.Soft))
	out = append(out, t.Hard...)
	return append(out, t.Soft...)
}

// BulkDeleteSummary reports a bulk delete in explicit buckets
type BulkDeleteSummary struct {
	HardDeleted   int             `json:"hard_deleted"`
	SoftDeleted   int             `json:"soft_deleted"`
	Skipped       int             `json:"skipped"`
	FailedCount   int             `json:"failed_count"`
	Failed        []DeleteFailure `json:"failed"`
	RefreshFailed bool            `json:"refresh_failed"`
	Message       string          `json:"message"`
}

// Reporter builds summaries. It holds no state.
type Reporter struct{}

// NewReporter creates a Reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// Consolidation summarizes a settled run
func (r *Reporter) Consolidation(run *consolidation.Run) ConsolidationSummary {
	failed := run.FailedUnits()
	summary := ConsolidationSummary{
		RunID:         run.ID,
		Outcome:       string(run.Outcome),
		Succeeded:     run.SucceededCount(),
		FailedCount:   len(failed),
		Failed:        make([]FailedUnit, 0, len(failed)),
		Skipped:       run.SkippedCount,
		RefreshFailed: run.RefreshFailed,
	}
	for i := range failed {
		u := &failed[i]
		summary.Failed = append(summary.Failed, FailedUnit{
			MemberID:     u.MemberID,
			CustomerName: u.CustomerName,
			Reason:       string(u.Reason),
			Message:      u.Message,
			ItemCount:    len(u.ItemIDs),
			CheckoutID:   u.CheckoutID,
		})
	}
	summary.Message = consolidationMessage(summary)
	return summary
}

func consolidationMessage(s ConsolidationSummary) string {
	parts := []string{fmt.Sprintf("%s created", plural(s.Succeeded, "checkout"))}
	if s.FailedCount > 0 {
		names := make([]string, 0, len(s.Failed))
		for _, f := range s.Failed {
			name := f.CustomerName
			if name == "" {
				name = f.MemberID
			}
			names = append(names, name)
		}
		parts = append(parts, fmt.Sprintf("%d failed (%s)", s.FailedCount, strings.Join(names, ", ")))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%s skipped as not arrived or already consolidated", plural(s.Skipped, "item")))
	}
	msg := strings.Join(parts, "; ")
	if s.RefreshFailed {
		msg += ". Order list could not be refreshed; reload to see current state"
	}
	return msg
}

// BulkDelete summarizes a bulk delete of noun records
func (r *Reporter) BulkDelete(noun string, tally *DeleteTally, refreshFailed bool) BulkDeleteSummary {
	failed := tally.Failed
	if failed == nil {
		failed = []DeleteFailure{}
	}
	summary := BulkDeleteSummary{
		HardDeleted:   len(tally.Hard),
		SoftDeleted:   len(tally.Soft),
		Skipped:       len(tally.Skipped),
		FailedCount:   len(tally.Failed),
		Failed:        failed,
		RefreshFailed: refreshFailed,
	}

	parts := []string{fmt.Sprintf("%s deleted", plural(summary.HardDeleted, noun))}
	if summary.SoftDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d archived because they are referenced", summary.SoftDeleted))
	}
	if summary.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", summary.Skipped))
	}
	if summary.FailedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", summary.FailedCount))
	}
	summary.Message = strings.Join(parts, "; ")
	return summary
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
