// Package catalog serves the grouped product view of the console and the
// product actions an operator can take on it.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/report"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductService handles the product side of the console
type ProductService struct {
	stock    ledger.StockGateway
	deletion ledger.DeletionGateway
	reporter *report.Reporter
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(stock ledger.StockGateway, deletion ledger.DeletionGateway, reporter *report.Reporter, logger *zap.Logger) *ProductService {
	if reporter == nil {
		reporter = report.NewReporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{stock: stock, deletion: deletion, reporter: reporter, logger: logger}
}

// ListGroups groups the session's products and returns one page of groups
// matching filter. Soft-deleted products stay listed so their groups keep
// their totals.
func (s *ProductService) ListGroups(sess *console.Session, filter GroupListFilter) GroupListResponse {
	products := sess.Products()
	groups := catalog.GroupProducts(products)

	matcher := shared.NewMatcher(filter.Search)
	category := shared.NewMatcher(filter.Category)
	matched := make([]catalog.ProductGroup, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		if filter.Status != "" && string(g.Status()) != filter.Status {
			continue
		}
		if !category.Empty() && !category.Match(g.Category) {
			continue
		}
		if !matcher.Empty() && !matchesGroup(matcher, g) {
			continue
		}
		matched = append(matched, *g)
	}

	page := shared.Paginate(matched, shared.Filter{Page: filter.Page, PageSize: filter.PageSize})

	sel := sess.Selection(selection.KindProducts)
	selected := make(map[uuid.UUID]struct{}, len(sel.IDs))
	for _, id := range sel.IDs {
		selected[id] = struct{}{}
	}
	isSelected := func(id uuid.UUID) bool {
		_, ok := selected[id]
		return ok
	}

	visible := make([]uuid.UUID, 0)
	items := make([]ProductGroupResponse, len(page.Items))
	for i := range page.Items {
		g := &page.Items[i]
		ids := g.MemberIDs()
		visible = append(visible, ids...)
		items[i] = ToProductGroupResponse(g, isSelected, sess.HeaderState(selection.KindProducts, ids))
	}

	return GroupListResponse{
		Paginated:     shared.NewPaginated(items, page.Total, page.Page, page.PageSize),
		SelectedCount: sel.Count,
		Header:        sess.HeaderState(selection.KindProducts, visible),
		VisibleIDs:    visible,
	}
}

func matchesGroup(m *shared.Matcher, g *catalog.ProductGroup) bool {
	if m.Match(g.GroupKey, g.BaseName) {
		return true
	}
	for _, p := range g.Members() {
		if m.Match(p.SKU, p.Name) {
			return true
		}
	}
	return false
}

// Restock adds quantity to sku through the ledger, then reloads products.
// Allocation of the new stock to waiting orders happens on the ledger side;
// its count is reported as is.
func (s *ProductService) Restock(ctx context.Context, sess *console.Session, req RestockRequest) (*RestockResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "SKU is required")
	}
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be greater than zero")
	}
	if !hasSKU(sess.Products(), sku) {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "No product with SKU "+sku)
	}

	outcome, err := s.stock.Restock(ctx, sess.TenantID(), sku, req.Quantity).Unpack()
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("restock failed",
			zap.String("sku", sku),
			zap.Int("quantity", req.Quantity),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &RestockResponse{
		SKU:            sku,
		Quantity:       req.Quantity,
		Message:        outcome.Message,
		AllocatedCount: outcome.AllocatedCount,
	}
	if err := sess.ReloadProducts(ctx); err != nil {
		resp.RefreshFailed = true
		logger.WithLogger(ctx, s.logger).Warn("product refresh after restock failed", zap.Error(err))
	}
	return resp, nil
}

func hasSKU(products []catalog.Product, sku string) bool {
	for i := range products {
		if products[i].SKU == sku && !products[i].IsDeleted() {
			return true
		}
	}
	return false
}

// BulkDeleteSelected deletes every selected product, one ledger call at a
// time. The ledger decides per product whether it is removed or archived.
// Products that vanished or were already archived are skipped.
func (s *ProductService) BulkDeleteSelected(ctx context.Context, sess *console.Session) (*report.BulkDeleteSummary, error) {
	selected := sess.Selection(selection.KindProducts).IDs
	if len(selected) == 0 {
		return nil, shared.NewDomainError("NOTHING_SELECTED", "No products are selected")
	}

	index := make(map[uuid.UUID]*catalog.Product)
	products := sess.Products()
	for i := range products {
		index[products[i].ID] = &products[i]
	}

	log := logger.WithLogger(ctx, s.logger)
	tally := &report.DeleteTally{}
	for _, id := range selected {
		p, ok := index[id]
		if !ok || p.IsDeleted() {
			tally.AddSkipped(id)
			continue
		}
		mode, err := s.deletion.DeleteProduct(ctx, sess.TenantID(), id).Unpack()
		if err != nil {
			tally.AddFailed(id, shared.CodeOf(err), err.Error())
			log.Warn("product delete failed", zap.String("product_id", id.String()), zap.String("sku", p.SKU), zap.Error(err))
			continue
		}
		if mode == ledger.DeleteModeSoft {
			tally.AddSoft(id)
		} else {
			tally.AddHard(id)
		}
	}

	refreshFailed := false
	if err := sess.ReloadProducts(ctx); err != nil {
		refreshFailed = true
		sess.DeselectProducts(ctx, tally.Removed())
		log.Warn("product refresh after bulk delete failed", zap.Error(err))
	}

	summary := s.reporter.BulkDelete("product", tally, refreshFailed)
	log.Info("product bulk delete finished",
		zap.Int("hard", len(tally.Hard)),
		zap.Int("soft", len(tally.Soft)),
		zap.Int("skipped", len(tally.Skipped)),
		zap.Int("failed", len(tally.Failed)),
	)
	return &summary, nil
}
