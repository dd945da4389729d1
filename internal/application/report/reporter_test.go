package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledRun(units ...consolidation.UnitResult) *consolidation.Run {
	run := consolidation.NewRun(uuid.New(), "op", trade.ShippingCourier, time.Now())
	run.Units = units
	run.Settle(time.Now())
	return run
}

func TestReporter_Consolidation(t *testing.T) {
	r := NewReporter()

	t.Run("all succeeded", func(t *testing.T) {
		run := settledRun(
			consolidation.UnitResult{MemberID: "X", Status: consolidation.UnitSucceeded},
			consolidation.UnitResult{MemberID: "Y", Status: consolidation.UnitSucceeded},
		)
		s := r.Consolidation(run)

		assert.Equal(t, "success", s.Outcome)
		assert.Equal(t, 2, s.Succeeded)
		assert.Empty(t, s.Failed)
		assert.Equal(t, "2 checkouts created", s.Message)
	})

	t.Run("partial with skipped and failures by customer", func(t *testing.T) {
		orphan := uuid.New()
		run := settledRun(
			consolidation.UnitResult{MemberID: "X", CustomerName: "Xavier", Status: consolidation.UnitSucceeded},
			consolidation.UnitResult{
				MemberID: "Y", CustomerName: "Yolanda", Status: consolidation.UnitFailed,
				ItemIDs: []uuid.UUID{uuid.New(), uuid.New()}, CheckoutID: &orphan,
				Reason: consolidation.ReasonLinkOrderItems, Message: "locked",
			},
			consolidation.UnitResult{MemberID: "Z", Status: consolidation.UnitFailed, Reason: consolidation.ReasonIdentityMissing},
		)
		run.SkippedCount = 1

		s := r.Consolidation(run)
		assert.Equal(t, "partial", s.Outcome)
		assert.Equal(t, 1, s.Succeeded)
		assert.Equal(t, 1, s.Skipped)
		require.Len(t, s.Failed, 2)
		assert.Equal(t, "link_order_items", s.Failed[0].Reason)
		assert.Equal(t, 2, s.Failed[0].ItemCount)
		assert.Equal(t, &orphan, s.Failed[0].CheckoutID)
		assert.Equal(t, "1 checkout created; 2 failed (Yolanda, Z); 1 item skipped as not arrived or already consolidated", s.Message)
	})

	t.Run("refresh failure is surfaced", func(t *testing.T) {
		run := settledRun(consolidation.UnitResult{MemberID: "X", Status: consolidation.UnitFailed})
		run.RefreshFailed = true

		s := r.Consolidation(run)
		assert.Equal(t, "all_failed", s.Outcome)
		assert.True(t, s.RefreshFailed)
		assert.Contains(t, s.Message, "could not be refreshed")
	})
}

func TestReporter_BulkDelete(t *testing.T) {
	r := NewReporter()

	tally := &DeleteTally{}
	tally.AddHard(uuid.New())
	tally.AddHard(uuid.New())
	tally.AddSoft(uuid.New())
	tally.AddSkipped(uuid.New())
	tally.AddFailed(uuid.New(), "REJECTED", "in use")

	s := r.BulkDelete("product", tally, false)
	assert.Equal(t, 2, s.HardDeleted)
	assert.Equal(t, 1, s.SoftDeleted)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.FailedCount)
	assert.Len(t, tally.Removed(), 3)
	assert.Equal(t, "2 products deleted; 1 archived because they are referenced; 1 skipped; 1 failed", s.Message)

	empty := r.BulkDelete("order item", &DeleteTally{}, true)
	assert.NotNil(t, empty.Failed)
	assert.True(t, empty.RefreshFailed)
	assert.Equal(t, "0 order items deleted", empty.Message)
}
