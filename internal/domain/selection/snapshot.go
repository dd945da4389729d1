package selection

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names the record list a selection belongs to
type Kind string

const (
	KindProducts   Kind = "products"
	KindOrderItems Kind = "order_items"
)

// IsValid checks if the kind is a known value
func (k Kind) IsValid() bool {
	return k == KindProducts || k == KindOrderItems
}

// Key addresses one operator's selection of one kind
type Key struct {
	TenantID   uuid.UUID
	OperatorID string
	Kind       Kind
}

// String renders the key as tenant:operator:kind
func (k Key) String() string {
	return k.TenantID.String() + ":" + k.OperatorID + ":" + string(k.Kind)
}

// Snapshot is a persisted copy of a Store's contents
type Snapshot struct {
	Key       Key
	IDs       []uuid.UUID
	UpdatedAt time.Time
}

// SnapshotRepository keeps selections across console sessions.
// Load returns shared.ErrNotFound when nothing is stored for key.
type SnapshotRepository interface {
	Load(ctx context.Context, key Key) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context, key Key) error
}
