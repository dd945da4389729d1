package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer identifies the buyer of an order item
type Customer struct {
	MemberID    string
	DisplayName string
}

// FulfillmentStatus is the derived progress of an order item
type FulfillmentStatus string

const (
	FulfillmentPending      FulfillmentStatus = "pending"
	FulfillmentPartial      FulfillmentStatus = "partial"
	FulfillmentArrived      FulfillmentStatus = "arrived"
	FulfillmentConsolidated FulfillmentStatus = "consolidated"
)

// IsValid checks if the status is a known value
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentPending, FulfillmentPartial, FulfillmentArrived, FulfillmentConsolidated:
		return true
	}
	return false
}

// OrderItem is one line a customer ordered, as reported by the ledger.
// Once CheckoutID is set the item is terminal.
type OrderItem struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SKU         string
	ProductName string
	Customer    Customer
	Quantity    int
	UnitPrice   decimal.Decimal
	ArrivedQty  int
	IsArrived   bool
	CheckoutID  *uuid.UUID
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// IsTerminal returns true if the item was already consolidated into a checkout
func (o *OrderItem) IsTerminal() bool {
	return o.CheckoutID != nil
}

// IsDeleted returns true if the item was soft-deleted
func (o *OrderItem) IsDeleted() bool {
	return o.DeletedAt != nil
}

// IsSelectable reports whether the item may be chosen for bulk actions
func (o *OrderItem) IsSelectable() bool {
	return !o.IsTerminal() && !o.IsDeleted()
}

// IsEligibleForConsolidation returns true if the item can join a checkout
func (o *OrderItem) IsEligibleForConsolidation() bool {
	return o.IsArrived && !o.IsTerminal() && !o.IsDeleted()
}

// Subtotal returns quantity times unit price
func (o *OrderItem) Subtotal() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Fulfillment derives the fulfillment status
func (o *OrderItem) Fulfillment() FulfillmentStatus {
	switch {
	case o.IsTerminal():
		return FulfillmentConsolidated
	case o.IsArrived:
		return FulfillmentArrived
	case o.ArrivedQty > 0:
		return FulfillmentPartial
	default:
		return FulfillmentPending
	}
}

// IndexByID builds an id lookup over items
func IndexByID(items []OrderItem) map[uuid.UUID]*OrderItem {
	index := make(map[uuid.UUID]*OrderItem, len(items))
	for i := range items {
		index[items[i].ID] = &items[i]
	}
	return index
}
