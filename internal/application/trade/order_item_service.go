// Package trade serves the order item list of the console and the bulk
// actions on it.
package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/report"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// OrderItemService handles the order side of the console
type OrderItemService struct {
	deletion ledger.DeletionGateway
	reporter *report.Reporter
	logger   *zap.Logger
}

// NewOrderItemService creates a new OrderItemService
func NewOrderItemService(deletion ledger.DeletionGateway, reporter *report.Reporter, logger *zap.Logger) *OrderItemService {
	if reporter == nil {
		reporter = report.NewReporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderItemService{deletion: deletion, reporter: reporter, logger: logger}
}

// ListOrderItems returns one page of the session's order items matching
// filter, in ledger order. Deleted items are hidden.
func (s *OrderItemService) ListOrderItems(sess *console.Session, filter OrderItemListFilter) OrderItemListResponse {
	items := sess.OrderItems()
	matcher := shared.NewMatcher(filter.Search)

	matched := make([]trade.OrderItem, 0, len(items))
	eligible := 0
	for i := range items {
		o := &items[i]
		if o.IsDeleted() {
			continue
		}
		if filter.Status != "" && string(o.Fulfillment()) != filter.Status {
			continue
		}
		if !matcher.Match(o.SKU, o.ProductName, o.Customer.DisplayName, o.Customer.MemberID) {
			continue
		}
		if o.IsEligibleForConsolidation() {
			eligible++
		}
		matched = append(matched, *o)
	}

	page := shared.Paginate(matched, shared.Filter{Page: filter.Page, PageSize: filter.PageSize})

	sel := sess.Selection(selection.KindOrderItems)
	selected := make(map[uuid.UUID]struct{}, len(sel.IDs))
	for _, id := range sel.IDs {
		selected[id] = struct{}{}
	}

	visible := make([]uuid.UUID, len(page.Items))
	rows := make([]OrderItemResponse, len(page.Items))
	for i := range page.Items {
		_, ok := selected[page.Items[i].ID]
		rows[i] = ToOrderItemResponse(&page.Items[i], ok)
		visible[i] = page.Items[i].ID
	}

	return OrderItemListResponse{
		Paginated:     shared.NewPaginated(rows, page.Total, page.Page, page.PageSize),
		SelectedCount: sel.Count,
		EligibleCount: eligible,
		Header:        sess.HeaderState(selection.KindOrderItems, visible),
		VisibleIDs:    visible,
	}
}

// BulkDeleteSelected deletes the selected order items one at a time.
// Consolidated items cannot be deleted and are skipped, as are items that
// vanished since the last load.
func (s *OrderItemService) BulkDeleteSelected(ctx context.Context, sess *console.Session) (*report.BulkDeleteSummary, error) {
	items, selected := sess.ConsolidationInput()
	if len(selected) == 0 {
		return nil, shared.NewDomainError("NOTHING_SELECTED", "No order items are selected")
	}
	index := trade.IndexByID(items)

	log := logger.WithLogger(ctx, s.logger)
	tally := &report.DeleteTally{}
	for _, id := range selected {
		o, ok := index[id]
		if !ok || !o.IsSelectable() {
			tally.AddSkipped(id)
			continue
		}
		if _, err := s.deletion.DeleteOrderItem(ctx, sess.TenantID(), id).Unpack(); err != nil {
			tally.AddFailed(id, shared.CodeOf(err), err.Error())
			log.Warn("order item delete failed",
				zap.String("order_item_id", id.String()),
				zap.String("member_id", o.Customer.MemberID),
				zap.Error(err),
			)
			continue
		}
		tally.AddHard(id)
	}

	refreshFailed := false
	if err := sess.ReloadOrderItems(ctx); err != nil {
		refreshFailed = true
		sess.DeselectOrderItems(ctx, tally.Removed())
		log.Warn("order refresh after bulk delete failed", zap.Error(err))
	}

	summary := s.reporter.BulkDelete("order item", tally, refreshFailed)
	log.Info("order item bulk delete finished",
		zap.Int("deleted", len(tally.Hard)),
		zap.Int("skipped", len(tally.Skipped)),
		zap.Int("failed", len(tally.Failed)),
	)
	return &summary, nil
}
