package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// envelope is the status part every ledger response carries
type envelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func (e *envelope) status() *envelope { return e }

type statusCarrier interface {
	status() *envelope
}

type createCheckoutRequest struct {
	Identity            string  `json:"identity"`
	ReceiverName        *string `json:"receiver_name,omitempty"`
	ReceiverPhone       *string `json:"receiver_phone,omitempty"`
	ReceiverPickupPoint *string `json:"receiver_pickup_point,omitempty"`
	ShippingMethod      string  `json:"shipping_method"`
}

type createCheckoutResponse struct {
	envelope
	CheckoutID uuid.UUID `json:"checkout_id"`
}

type linkOrderItemsRequest struct {
	CheckoutID   uuid.UUID   `json:"checkout_id"`
	OrderItemIDs []uuid.UUID `json:"order_item_ids"`
}

type restockRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type restockResponse struct {
	envelope
	Message        string `json:"message"`
	AllocatedCount int    `json:"allocated_count"`
}

type deleteRequest struct {
	ID uuid.UUID `json:"id"`
}

type deleteProductResponse struct {
	envelope
	Mode string `json:"mode"`
}

type resolveMembersRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type wireContact struct {
	MessagingID   string `json:"messaging_id"`
	ReceiverName  string `json:"receiver_name"`
	ReceiverPhone string `json:"receiver_phone"`
	PickupPoint   string `json:"pickup_point"`
}

type resolveMembersResponse struct {
	envelope
	Members map[string]wireContact `json:"members"`
}

type wireOrderItem struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	MemberID     string          `json:"member_id"`
	CustomerName string          `json:"customer_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ArrivedQty   int             `json:"arrived_qty"`
	IsArrived    bool            `json:"is_arrived"`
	CheckoutID   *uuid.UUID      `json:"checkout_id"`
	CreatedAt    time.Time       `json:"created_at"`
	DeletedAt    *time.Time      `json:"deleted_at"`
}

type orderItemsResponse struct {
	envelope
	Items []wireOrderItem `json:"items"`
}

type wireProduct struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Stock     *int            `json:"stock"`
	SoldQty   int             `json:"sold_qty"`
	Status    string          `json:"status"`
	Category  string          `json:"category"`
	DeletedAt *time.Time      `json:"deleted_at"`
}

type productsResponse struct {
	envelope
	Products []wireProduct `json:"products"`
}

func (w *wireOrderItem) toDomain(tenantID uuid.UUID) trade.OrderItem {
	return trade.OrderItem{
		ID:          w.ID,
		TenantID:    tenantID,
		SKU:         w.SKU,
		ProductName: w.ProductName,
		Customer: trade.Customer{
			MemberID:    w.MemberID,
			DisplayName: w.CustomerName,
		},
		Quantity:   w.Quantity,
		UnitPrice:  w.UnitPrice,
		ArrivedQty: w.ArrivedQty,
		IsArrived:  w.IsArrived,
		CheckoutID: w.CheckoutID,
		CreatedAt:  w.CreatedAt,
		DeletedAt:  w.DeletedAt,
	}
}

func (w *wireProduct) toDomain(tenantID uuid.UUID) catalog.Product {
	status := catalog.ProductStatus(w.Status)
	if !status.IsValid() {
		status = catalog.ProductStatusInactive
	}
	return catalog.Product{
		ID:        w.ID,
		TenantID:  tenantID,
		SKU:       w.SKU,
		Name:      w.Name,
		Price:     w.Price,
		ImageURL:  w.ImageURL,
		Stock:     w.Stock,
		SoldQty:   w.SoldQty,
		Status:    status,
		Category:  w.Category,
		DeletedAt: w.DeletedAt,
	}
}

func (w wireContact) toDomain() trade.Contact {
	return trade.Contact{
		MessagingID:   w.MessagingID,
		ReceiverName:  w.ReceiverName,
		ReceiverPhone: w.ReceiverPhone,
		PickupPoint:   w.PickupPoint,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
