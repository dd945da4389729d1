package consolidation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Classify(2, 2))
	assert.Equal(t, OutcomePartial, Classify(1, 2))
	assert.Equal(t, OutcomeAllFailed, Classify(0, 2))
	assert.Equal(t, OutcomeAllFailed, Classify(0, 0))
}

func TestRun_Settle(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := NewRun(uuid.New(), "op-1", trade.ShippingCourier, start)
	run.Units = []UnitResult{
		{MemberID: "X", Status: UnitSucceeded},
		{MemberID: "Y", Status: UnitFailed, Reason: ReasonIdentityMissing},
	}

	run.Settle(start.Add(3 * time.Second))

	assert.Equal(t, OutcomePartial, run.Outcome)
	assert.Equal(t, 1, run.SucceededCount())
	require.Len(t, run.FailedUnits(), 1)
	assert.Equal(t, "Y", run.FailedUnits()[0].MemberID)
	assert.Equal(t, 3*time.Second, run.Duration())
}

func TestErrors(t *testing.T) {
	t.Run("validation error unwraps to its cause", func(t *testing.T) {
		err := NewValidationError(shared.ErrNoEligibleItems)
		assert.True(t, errors.Is(err, shared.ErrNoEligibleItems))

		var ve *ValidationError
		assert.True(t, errors.As(error(err), &ve))
	})

	t.Run("identity missing error matches sentinel", func(t *testing.T) {
		err := &IdentityMissingError{MemberID: "m-1", CustomerName: "Ann"}
		assert.True(t, errors.Is(err, shared.ErrIdentityMissing))
		assert.Contains(t, err.Error(), "Ann")
	})

	t.Run("external call error matches sentinel and cause", func(t *testing.T) {
		cause := shared.NewDomainError("TRANSPORT_ERROR", "dial tcp: refused")
		err := &ExternalCallError{Step: ReasonCreateCheckout, MemberID: "m-1", Cause: cause}
		assert.True(t, errors.Is(err, shared.ErrExternalCall))
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "EXTERNAL_CALL_FAILED", shared.CodeOf(err))
		assert.Contains(t, err.Error(), "create_checkout")
	})
}
