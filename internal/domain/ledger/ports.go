package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
)

// Failure codes produced by adapters
const (
	CodeTransport       = "TRANSPORT_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeRejected        = "REJECTED"
)

// CheckoutRequest is the payload of create_checkout
type CheckoutRequest struct {
	TenantID       uuid.UUID
	Identity       string
	ReceiverName   string
	ReceiverPhone  string
	PickupPoint    string
	ShippingMethod trade.ShippingMethod
}

// CheckoutGateway creates checkouts and links order items to them
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) shared.Result[uuid.UUID]
	LinkOrderItems(ctx context.Context, tenantID, checkoutID uuid.UUID, orderItemIDs []uuid.UUID) shared.Result[struct{}]
}

// RecordSource is the source of truth for products and order items
type RecordSource interface {
	FetchOrderItems(ctx context.Context, tenantID uuid.UUID) ([]trade.OrderItem, error)
	FetchProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error)
}

// RestockOutcome is the reply of a restock call. AllocatedCount is opaque:
// the allocation itself happens on the ledger side.
type RestockOutcome struct {
	Message        string
	AllocatedCount int
}

// StockGateway adds stock to a SKU
type StockGateway interface {
	Restock(ctx context.Context, tenantID uuid.UUID, sku string, quantity int) shared.Result[RestockOutcome]
}

// DeleteMode tells how the ledger removed a record
type DeleteMode string

const (
	DeleteModeHard DeleteMode = "hard"
	DeleteModeSoft DeleteMode = "soft"
)

// DeletionGateway removes products and order items
type DeletionGateway interface {
	DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) shared.Result[DeleteMode]
	DeleteOrderItem(ctx context.Context, tenantID, orderItemID uuid.UUID) shared.Result[struct{}]
}

// MemberDirectory resolves delivery contacts for members. Members that are
// unknown are absent from the returned map.
type MemberDirectory interface {
	ResolveContacts(ctx context.Context, tenantID uuid.UUID, memberIDs []string) (map[string]trade.Contact, error)
}

// Ledger is the full surface of the external backend
type Ledger interface {
	CheckoutGateway
	RecordSource
	StockGateway
	DeletionGateway
	MemberDirectory
}
