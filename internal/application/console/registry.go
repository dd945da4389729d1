package console

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/consolidation"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrOperatorRequired is returned when no operator id is supplied
var ErrOperatorRequired = shared.NewDomainError("INVALID_INPUT", "Operator id is required")

type sessionKey struct {
	tenantID   uuid.UUID
	operatorID string
}

// Registry owns one Session per tenant and operator. A session is created
// and loaded from the ledger on first use and lives until Evict or until
// EvictIdle finds it unused.
type Registry struct {
	records   ledger.RecordSource
	snapshots selection.SnapshotRepository
	deps      *consolidation.Dependencies
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*Session
	lastUsed map[sessionKey]time.Time
	loading  map[sessionKey]*sync.Mutex
}

// NewRegistry creates an empty registry. snapshots may be nil to keep
// selections in memory only. Every session's orchestrator shares deps.
func NewRegistry(records ledger.RecordSource, snapshots selection.SnapshotRepository, deps *consolidation.Dependencies, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		records:   records,
		snapshots: snapshots,
		deps:      deps,
		logger:    logger,
		now:       now,
		sessions:  make(map[sessionKey]*Session),
		lastUsed:  make(map[sessionKey]time.Time),
		loading:   make(map[sessionKey]*sync.Mutex),
	}
}

// Session returns the operator's session, loading it on first use. A
// session whose initial load fails is not kept.
func (r *Registry) Session(ctx context.Context, tenantID uuid.UUID, operatorID string) (*Session, error) {
	operatorID = strings.TrimSpace(operatorID)
	if operatorID == "" {
		return nil, ErrOperatorRequired
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant id is required")
	}
	key := sessionKey{tenantID: tenantID, operatorID: operatorID}

	r.mu.Lock()
	if s, ok := r.sessions[key]; ok {
		r.lastUsed[key] = r.now()
		r.mu.Unlock()
		return s, nil
	}
	gate, ok := r.loading[key]
	if !ok {
		gate = &sync.Mutex{}
		r.loading[key] = gate
	}
	r.mu.Unlock()

	// one loader per key; later callers find the stored session
	gate.Lock()
	defer gate.Unlock()

	r.mu.Lock()
	if s, ok := r.sessions[key]; ok {
		r.lastUsed[key] = r.now()
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	s, err := r.open(ctx, tenantID, operatorID)

	r.mu.Lock()
	delete(r.loading, key)
	if err == nil {
		r.sessions[key] = s
		r.lastUsed[key] = r.now()
	}
	r.mu.Unlock()
	return s, err
}

// open loads a new session's records, then restores its selections
// against them.
func (r *Registry) open(ctx context.Context, tenantID uuid.UUID, operatorID string) (*Session, error) {
	orchestrator := consolidation.NewOrchestrator(r.deps)
	s := NewSession(tenantID, operatorID, SessionConfig{
		Records:   r.records,
		Snapshots: r.snapshots,
		Logger:    r.logger,
		Now:       r.deps.Now,
	}, orchestrator)

	products, err := r.records.FetchProducts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	items, err := r.records.FetchOrderItems(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	s.mu.Lock()
	s.setProductsLocked(products)
	s.setOrderItemsLocked(items)
	s.mu.Unlock()
	s.restore(ctx)

	r.logger.Info("console session opened",
		zap.String("tenant_id", tenantID.String()),
		zap.String("operator_id", operatorID),
		zap.Int("products", len(products)),
		zap.Int("order_items", len(items)),
	)
	return s, nil
}

// Evict drops a session. Its persisted selections are kept.
func (r *Registry) Evict(tenantID uuid.UUID, operatorID string) {
	key := sessionKey{tenantID: tenantID, operatorID: operatorID}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
	delete(r.lastUsed, key)
}

// EvictIdle drops sessions not used for maxIdle and returns how many were
// dropped. A session with a running consolidation is kept, so a second
// run can never start beside it.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, s := range r.sessions {
		if r.lastUsed[key].After(cutoff) {
			continue
		}
		if s.Consolidation().State().Phase == consolidation.PhaseRunning {
			continue
		}
		delete(r.sessions, key)
		delete(r.lastUsed, key)
		evicted++
		r.logger.Info("console session evicted",
			zap.String("tenant_id", key.tenantID.String()),
			zap.String("operator_id", key.operatorID),
		)
	}
	return evicted
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
