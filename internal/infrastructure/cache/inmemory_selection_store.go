package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
)

type selectionEntry struct {
	ids       []uuid.UUID
	updatedAt time.Time
	expiresAt time.Time
}

// InMemorySelectionStore implements selection.SnapshotRepository with a map.
// Suitable for single-instance deployments and tests.
type InMemorySelectionStore struct {
	mu        sync.RWMutex
	entries   map[selection.Key]selectionEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySelectionStore creates a store whose snapshots expire after ttl.
// A background goroutine evicts expired snapshots until Close is called.
func NewInMemorySelectionStore(ttl time.Duration) *InMemorySelectionStore {
	store := &InMemorySelectionStore{
		entries:  make(map[selection.Key]selectionEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Load returns the snapshot for key or shared.ErrNotFound
func (s *InMemorySelectionStore) Load(ctx context.Context, key selection.Key) (*selection.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.expired(e) {
		return nil, shared.ErrNotFound
	}

	ids := make([]uuid.UUID, len(e.ids))
	copy(ids, e.ids)
	return &selection.Snapshot{Key: key, IDs: ids, UpdatedAt: e.updatedAt}, nil
}

// Save stores a copy of snapshot and refreshes its expiry
func (s *InMemorySelectionStore) Save(ctx context.Context, snapshot *selection.Snapshot) error {
	ids := make([]uuid.UUID, len(snapshot.IDs))
	copy(ids, snapshot.IDs)

	now := s.now()
	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[snapshot.Key] = selectionEntry{
		ids:       ids,
		updatedAt: updatedAt,
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

// Delete removes the snapshot for key
func (s *InMemorySelectionStore) Delete(ctx context.Context, key selection.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Ping always succeeds
func (s *InMemorySelectionStore) Ping(context.Context) error { return nil }

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySelectionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored snapshots, expired ones included
func (s *InMemorySelectionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemorySelectionStore) expired(e selectionEntry) bool {
	return s.ttl > 0 && s.now().After(e.expiresAt)
}

func (s *InMemorySelectionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemorySelectionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
		}
	}
}

var _ selection.SnapshotRepository = (*InMemorySelectionStore)(nil)
