package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the status is a known value
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product is a sellable SKU as reported by the ledger backend.
// Stock is nil or negative for preorder products.
type Product struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	SKU       string
	Name      string
	Price     decimal.Decimal
	ImageURL  string
	Stock     *int
	SoldQty   int
	Status    ProductStatus
	Category  string
	DeletedAt *time.Time
}

// IsPreorder returns true when the product has no tracked stock
func (p *Product) IsPreorder() bool {
	return p.Stock == nil || *p.Stock < 0
}

// StockCount returns the stock contribution to aggregate totals.
// Unknown stock counts as zero; negative values are kept as reported.
func (p *Product) StockCount() int {
	if p.Stock == nil {
		return 0
	}
	return *p.Stock
}

// IsDeleted returns true if the product was soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Key returns the parsed SKU key of the product
func (p *Product) Key() SKUKey {
	return ParseSKU(p.SKU)
}

// IsSelectable reports whether the product may be chosen for bulk actions
func (p *Product) IsSelectable() bool {
	return !p.IsDeleted()
}
