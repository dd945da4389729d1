package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderItemListFilter narrows the order item list
type OrderItemListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending partial arrived consolidated"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// OrderItemResponse is one order item row
type OrderItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	MemberID     string          `json:"member_id"`
	CustomerName string          `json:"customer_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ArrivedQty   int             `json:"arrived_qty"`
	IsArrived    bool            `json:"is_arrived"`
	Status       string          `json:"status"`
	CheckoutID   *uuid.UUID      `json:"checkout_id"`
	CreatedAt    time.Time       `json:"created_at"`
	Deleted      bool            `json:"deleted"`
	Selectable   bool            `json:"selectable"`
	Selected     bool            `json:"selected"`
}

// OrderItemListResponse is a page of order items plus the selection
// header state over that page.
type OrderItemListResponse struct {
	shared.Paginated[OrderItemResponse]
	SelectedCount int                   `json:"selected_count"`
	EligibleCount int                   `json:"eligible_count"`
	Header        selection.HeaderState `json:"header"`
	VisibleIDs    []uuid.UUID           `json:"visible_ids"`
}

// ToOrderItemResponse converts an order item
func ToOrderItemResponse(o *trade.OrderItem, selected bool) OrderItemResponse {
	return OrderItemResponse{
		ID:           o.ID,
		SKU:          o.SKU,
		ProductName:  o.ProductName,
		MemberID:     o.Customer.MemberID,
		CustomerName: o.Customer.DisplayName,
		Quantity:     o.Quantity,
		UnitPrice:    o.UnitPrice,
		Subtotal:     o.Subtotal(),
		ArrivedQty:   o.ArrivedQty,
		IsArrived:    o.IsArrived,
		Status:       string(o.Fulfillment()),
		CheckoutID:   o.CheckoutID,
		CreatedAt:    o.CreatedAt,
		Deleted:      o.IsDeleted(),
		Selectable:   o.IsSelectable(),
		Selected:     selected,
	}
}
