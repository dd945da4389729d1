package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/consolidation"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, m *testutil.MockLedger, items ...trade.OrderItem) *console.Session {
	t.Helper()
	deps := &consolidation.Dependencies{Checkouts: m, Members: m, Records: m}
	s := console.NewSession(testutil.TestTenantID(), "op-1", console.SessionConfig{Records: m},
		consolidation.NewOrchestrator(deps))
	s.ReplaceOrderItems(context.Background(), items)
	return s
}

func orderFixture() []trade.OrderItem {
	partial := testutil.NewOrderItem("partial", "Y")
	partial.Quantity = 3
	partial.ArrivedQty = 1
	return []trade.OrderItem{
		testutil.NewOrderItem("a", "X", testutil.Arrived(), testutil.WithSKU("MUG")),
		testutil.NewOrderItem("b", "X"),
		partial,
		testutil.NewOrderItem("done", "Z", testutil.Arrived(), testutil.Consolidated(uuid.New())),
		testutil.NewOrderItem("gone", "Z", testutil.Deleted()),
	}
}

func TestOrderItemService_ListOrderItems(t *testing.T) {
	items := orderFixture()
	s := newSession(t, new(testutil.MockLedger), items...)
	svc := NewOrderItemService(nil, nil, nil)

	t.Run("hides deleted items", func(t *testing.T) {
		resp := svc.ListOrderItems(s, OrderItemListFilter{})
		assert.Equal(t, int64(4), resp.Total)
		assert.Equal(t, 1, resp.EligibleCount)
		assert.Equal(t, testutil.IDs(items[:4]...), resp.VisibleIDs)
		assert.False(t, resp.Items[3].Selectable)
		assert.Equal(t, "consolidated", resp.Items[3].Status)
	})

	t.Run("filters by fulfillment status", func(t *testing.T) {
		for status, want := range map[string]uuid.UUID{
			"arrived":      items[0].ID,
			"pending":      items[1].ID,
			"partial":      items[2].ID,
			"consolidated": items[3].ID,
		} {
			resp := svc.ListOrderItems(s, OrderItemListFilter{Status: status})
			require.Len(t, resp.Items, 1, status)
			assert.Equal(t, want, resp.Items[0].ID, status)
		}
	})

	t.Run("search matches sku and customer", func(t *testing.T) {
		resp := svc.ListOrderItems(s, OrderItemListFilter{Search: "mug"})
		require.Len(t, resp.Items, 1)
		assert.Equal(t, items[0].ID, resp.Items[0].ID)

		resp = svc.ListOrderItems(s, OrderItemListFilter{Search: "customer y"})
		require.Len(t, resp.Items, 1)
		assert.Equal(t, items[2].ID, resp.Items[0].ID)
	})

	t.Run("header reflects the visible page", func(t *testing.T) {
		_, err := s.Toggle(context.Background(), selection.KindOrderItems, items[0].ID)
		require.NoError(t, err)

		resp := svc.ListOrderItems(s, OrderItemListFilter{Page: 1, PageSize: 1})
		assert.Equal(t, selection.HeaderAll, resp.Header)
		assert.True(t, resp.Items[0].Selected)

		resp = svc.ListOrderItems(s, OrderItemListFilter{Page: 2, PageSize: 1})
		assert.Equal(t, selection.HeaderNone, resp.Header)
		assert.Equal(t, 1, resp.SelectedCount)
	})
}

func TestOrderItemService_BulkDeleteSelected(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing selected", func(t *testing.T) {
		m := new(testutil.MockLedger)
		_, err := NewOrderItemService(m, nil, nil).BulkDeleteSelected(ctx, newSession(t, m, orderFixture()...))
		assert.Equal(t, "NOTHING_SELECTED", shared.CodeOf(err))
	})

	t.Run("deletes and reloads", func(t *testing.T) {
		m := new(testutil.MockLedger)
		items := orderFixture()
		s := newSession(t, m, items...)
		for _, id := range testutil.IDs(items[0], items[1], items[2]) {
			_, err := s.Toggle(ctx, selection.KindOrderItems, id)
			require.NoError(t, err)
		}

		m.On("DeleteOrderItem", mock.Anything, testutil.TestTenantID(), items[0].ID).Return(testutil.OkUnit()).Once()
		m.On("DeleteOrderItem", mock.Anything, testutil.TestTenantID(), items[1].ID).Return(testutil.OkUnit()).Once()
		m.On("DeleteOrderItem", mock.Anything, testutil.TestTenantID(), items[2].ID).Return(testutil.Rejected[struct{}]("locked")).Once()
		m.On("FetchOrderItems", mock.Anything, testutil.TestTenantID()).Return(items[2:], nil).Once()

		summary, err := NewOrderItemService(m, nil, nil).BulkDeleteSelected(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.HardDeleted)
		assert.Equal(t, 1, summary.FailedCount)
		assert.Equal(t, "2 order items deleted; 1 failed", summary.Message)
		assert.Equal(t, []uuid.UUID{items[2].ID}, s.Selection(selection.KindOrderItems).IDs)
		m.AssertExpectations(t)
	})

	t.Run("refresh failure deselects deleted items", func(t *testing.T) {
		m := new(testutil.MockLedger)
		items := orderFixture()
		s := newSession(t, m, items...)
		_, err := s.Toggle(ctx, selection.KindOrderItems, items[1].ID)
		require.NoError(t, err)

		m.On("DeleteOrderItem", mock.Anything, mock.Anything, items[1].ID).Return(testutil.OkUnit()).Once()
		m.On("FetchOrderItems", mock.Anything, mock.Anything).Return(nil, errors.New("down")).Once()

		summary, err := NewOrderItemService(m, nil, nil).BulkDeleteSelected(ctx, s)
		require.NoError(t, err)
		assert.True(t, summary.RefreshFailed)
		assert.Equal(t, 1, summary.HardDeleted)
		assert.Empty(t, s.Selection(selection.KindOrderItems).IDs)
		assert.Len(t, s.OrderItems(), len(items))
	})
}
