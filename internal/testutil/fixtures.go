package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// TestTenantID returns a fixed tenant ID for testing.
func TestTenantID() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000001")
}

// NewTestUUID creates a deterministic UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// OrderItemOption customizes a fixture order item
type OrderItemOption func(*trade.OrderItem)

// Arrived marks the item as arrived
func Arrived() OrderItemOption {
	return func(o *trade.OrderItem) {
		o.IsArrived = true
		o.ArrivedQty = o.Quantity
	}
}

// Consolidated sets the checkout id, making the item terminal
func Consolidated(checkoutID uuid.UUID) OrderItemOption {
	return func(o *trade.OrderItem) { o.CheckoutID = &checkoutID }
}

// WithSKU sets the item's sku
func WithSKU(sku string) OrderItemOption {
	return func(o *trade.OrderItem) { o.SKU = sku }
}

// Deleted soft-deletes the item
func Deleted() OrderItemOption {
	return func(o *trade.OrderItem) {
		at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
		o.DeletedAt = &at
	}
}

// NewOrderItem builds an order item of member with a deterministic id
// derived from name.
func NewOrderItem(name, member string, opts ...OrderItemOption) trade.OrderItem {
	item := trade.OrderItem{
		ID:          NewTestUUID(name),
		TenantID:    TestTenantID(),
		SKU:         "TEE_red",
		ProductName: "Tee (red) " + name,
		Customer:    trade.Customer{MemberID: member, DisplayName: "Customer " + member},
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(100),
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// NewProduct builds a product with a deterministic id derived from sku
func NewProduct(sku, name string, stock *int, sold int) catalog.Product {
	return catalog.Product{
		ID:       NewTestUUID(sku),
		TenantID: TestTenantID(),
		SKU:      sku,
		Name:     name,
		Price:    decimal.NewFromInt(100),
		Stock:    stock,
		SoldQty:  sold,
		Status:   catalog.ProductStatusActive,
	}
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// IDs returns the ids of items in order
func IDs(items ...trade.OrderItem) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}
