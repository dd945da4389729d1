// Package console holds the per-operator state of the operator console:
// the loaded records, the two selections and the consolidation dialog.
package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/consolidation"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrInvalidKind is returned for an unknown selection kind
var ErrInvalidKind = shared.NewDomainError("INVALID_INPUT", "Unknown selection kind")

// SelectionView is a copy of one selection
type SelectionView struct {
	Kind  selection.Kind `json:"kind"`
	IDs   []uuid.UUID    `json:"ids"`
	Count int            `json:"count"`
}

// Session is one operator's console state within a tenant. Every mutation
// of records or selections goes through a method that holds mu.
type Session struct {
	tenantID   uuid.UUID
	operatorID string
	records    ledger.RecordSource
	snapshots  selection.SnapshotRepository
	logger     *zap.Logger
	now        func() time.Time

	mu         sync.Mutex
	products   []catalog.Product
	orderItems []trade.OrderItem
	// id -> position in products / orderItems, rebuilt on every load
	productIdx map[uuid.UUID]int
	orderIdx   map[uuid.UUID]int
	productSel *selection.Store
	orderSel   *selection.Store

	orchestrator *consolidation.Orchestrator
}

var _ consolidation.Workspace = (*Session)(nil)

// SessionConfig holds what a session needs besides its identity
type SessionConfig struct {
	Records   ledger.RecordSource
	Snapshots selection.SnapshotRepository
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewSession creates an empty session. Call ReloadProducts and
// ReloadOrderItems before use.
func NewSession(tenantID uuid.UUID, operatorID string, cfg SessionConfig, orchestrator *consolidation.Orchestrator) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Session{
		tenantID:     tenantID,
		operatorID:   operatorID,
		records:      cfg.Records,
		snapshots:    cfg.Snapshots,
		logger:       cfg.Logger,
		now:          cfg.Now,
		orchestrator: orchestrator,
	}
	s.productSel = selection.NewStore(s.productSelectable)
	s.orderSel = selection.NewStore(s.orderSelectable)
	return s
}

// TenantID returns the session's tenant
func (s *Session) TenantID() uuid.UUID { return s.tenantID }

// OperatorID returns the session's operator
func (s *Session) OperatorID() string { return s.operatorID }

// Consolidation returns the session's consolidation state machine
func (s *Session) Consolidation() *consolidation.Orchestrator { return s.orchestrator }

// eligibility predicates are only called with mu held

func (s *Session) productSelectable(id uuid.UUID) bool {
	i, ok := s.productIdx[id]
	return ok && s.products[i].IsSelectable()
}

func (s *Session) orderSelectable(id uuid.UUID) bool {
	i, ok := s.orderIdx[id]
	return ok && s.orderItems[i].IsSelectable()
}

// setProductsLocked installs products and returns their ids
func (s *Session) setProductsLocked(products []catalog.Product) []uuid.UUID {
	s.products = products
	s.productIdx = make(map[uuid.UUID]int, len(products))
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		s.productIdx[products[i].ID] = i
		ids[i] = products[i].ID
	}
	return ids
}

// setOrderItemsLocked installs order items and returns their ids
func (s *Session) setOrderItemsLocked(items []trade.OrderItem) []uuid.UUID {
	s.orderItems = items
	s.orderIdx = make(map[uuid.UUID]int, len(items))
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		s.orderIdx[items[i].ID] = i
		ids[i] = items[i].ID
	}
	return ids
}

// Products returns a copy of the loaded products
func (s *Session) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out
}

// OrderItems returns a copy of the loaded order items
func (s *Session) OrderItems() []trade.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]trade.OrderItem, len(s.orderItems))
	copy(out, s.orderItems)
	return out
}

// ReloadProducts fetches products from the ledger and installs them
func (s *Session) ReloadProducts(ctx context.Context) error {
	products, err := s.records.FetchProducts(ctx, s.tenantID)
	if err != nil {
		return err
	}
	s.ReplaceProducts(ctx, products)
	return nil
}

// ReloadOrderItems fetches order items from the ledger and installs them
func (s *Session) ReloadOrderItems(ctx context.Context) error {
	items, err := s.records.FetchOrderItems(ctx, s.tenantID)
	if err != nil {
		return err
	}
	s.ReplaceOrderItems(ctx, items)
	return nil
}

// ReplaceProducts installs products and prunes the product selection
func (s *Session) ReplaceProducts(ctx context.Context, products []catalog.Product) {
	s.mu.Lock()
	pruned := s.productSel.Prune(s.setProductsLocked(products))
	snap := s.snapshotLocked(selection.KindProducts)
	s.mu.Unlock()

	s.pruned(ctx, selection.KindProducts, pruned)
	s.persist(ctx, snap)
}

// ReplaceOrderItems installs order items and prunes the order selection,
// dropping ids that disappeared or became terminal.
func (s *Session) ReplaceOrderItems(ctx context.Context, items []trade.OrderItem) {
	s.mu.Lock()
	pruned := s.orderSel.Prune(s.setOrderItemsLocked(items))
	snap := s.snapshotLocked(selection.KindOrderItems)
	s.mu.Unlock()

	s.pruned(ctx, selection.KindOrderItems, pruned)
	s.persist(ctx, snap)
}

// ConsolidationInput returns the loaded order items and the order selection
func (s *Session) ConsolidationInput() ([]trade.OrderItem, []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]trade.OrderItem, len(s.orderItems))
	copy(items, s.orderItems)
	return items, s.orderSel.IDs()
}

// DeselectOrderItems removes ids from the order selection
func (s *Session) DeselectOrderItems(ctx context.Context, ids []uuid.UUID) {
	s.deselect(ctx, selection.KindOrderItems, ids)
}

// DeselectProducts removes ids from the product selection
func (s *Session) DeselectProducts(ctx context.Context, ids []uuid.UUID) {
	s.deselect(ctx, selection.KindProducts, ids)
}

func (s *Session) deselect(ctx context.Context, kind selection.Kind, ids []uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	s.store(kind).Retain(func(id uuid.UUID) bool {
		_, ok := drop[id]
		return !ok
	})
	snap := s.snapshotLocked(kind)
	s.mu.Unlock()

	s.persist(ctx, snap)
}

// Toggle flips one id in the selection of kind
func (s *Session) Toggle(ctx context.Context, kind selection.Kind, id uuid.UUID) (bool, error) {
	if !kind.IsValid() {
		return false, ErrInvalidKind
	}
	s.mu.Lock()
	selected, err := s.store(kind).Toggle(id)
	snap := s.snapshotLocked(kind)
	s.mu.Unlock()

	if err != nil {
		return false, err
	}
	s.persist(ctx, snap)
	return selected, nil
}

// SelectAllVisible applies scoped select-all over visible ids
func (s *Session) SelectAllVisible(ctx context.Context, kind selection.Kind, visible []uuid.UUID) (selection.HeaderState, error) {
	if !kind.IsValid() {
		return selection.HeaderNone, ErrInvalidKind
	}
	s.mu.Lock()
	store := s.store(kind)
	store.SelectAllVisible(visible)
	header := store.HeaderState(visible)
	snap := s.snapshotLocked(kind)
	s.mu.Unlock()

	s.persist(ctx, snap)
	return header, nil
}

// ClearSelection empties the selection of kind
func (s *Session) ClearSelection(ctx context.Context, kind selection.Kind) error {
	if !kind.IsValid() {
		return ErrInvalidKind
	}
	s.mu.Lock()
	s.store(kind).Clear()
	s.mu.Unlock()

	if s.snapshots == nil {
		return nil
	}
	if err := s.snapshots.Delete(ctx, s.key(kind)); err != nil {
		s.log(ctx).Warn("failed to delete selection snapshot", zap.String("kind", string(kind)), zap.Error(err))
	}
	return nil
}

// Selection returns a copy of the selection of kind
func (s *Session) Selection(kind selection.Kind) SelectionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.store(kind).IDs()
	return SelectionView{Kind: kind, IDs: ids, Count: len(ids)}
}

// HeaderState returns the select-all checkbox state over visible ids
func (s *Session) HeaderState(kind selection.Kind, visible []uuid.UUID) selection.HeaderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(kind).HeaderState(visible)
}

// restore loads persisted selections. Ids that are no longer selectable
// against the loaded records are dropped.
func (s *Session) restore(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	for _, kind := range []selection.Kind{selection.KindProducts, selection.KindOrderItems} {
		snap, err := s.snapshots.Load(ctx, s.key(kind))
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				s.log(ctx).Warn("failed to restore selection", zap.String("kind", string(kind)), zap.Error(err))
			}
			continue
		}
		s.mu.Lock()
		s.store(kind).Restore(snap.IDs)
		restored := s.store(kind).Len()
		s.mu.Unlock()

		s.log(ctx).Debug("selection restored",
			zap.String("kind", string(kind)),
			zap.Int("stored", len(snap.IDs)),
			zap.Int("restored", restored),
		)
	}
}

func (s *Session) store(kind selection.Kind) *selection.Store {
	if kind == selection.KindProducts {
		return s.productSel
	}
	return s.orderSel
}

func (s *Session) key(kind selection.Kind) selection.Key {
	return selection.Key{TenantID: s.tenantID, OperatorID: s.operatorID, Kind: kind}
}

func (s *Session) snapshotLocked(kind selection.Kind) *selection.Snapshot {
	return &selection.Snapshot{Key: s.key(kind), IDs: s.store(kind).IDs(), UpdatedAt: s.now()}
}

// persist saves a snapshot. Failures are logged; the in-memory selection
// stays authoritative.
func (s *Session) persist(ctx context.Context, snap *selection.Snapshot) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.log(ctx).Warn("failed to persist selection",
			zap.String("kind", string(snap.Key.Kind)),
			zap.Int("count", len(snap.IDs)),
			zap.Error(err),
		)
	}
}

func (s *Session) pruned(ctx context.Context, kind selection.Kind, n int) {
	if n > 0 {
		s.log(ctx).Debug("selection pruned after reload", zap.String("kind", string(kind)), zap.Int("removed", n))
	}
}

func (s *Session) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, logger.FromContextOr(ctx, s.logger)).With(
		zap.String("tenant_id", s.tenantID.String()),
		zap.String("operator_id", s.operatorID),
	)
}
