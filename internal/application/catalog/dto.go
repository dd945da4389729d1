package catalog

import (
	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/catalog"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GroupListFilter narrows the grouped catalog
type GroupListFilter struct {
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=active partial inactive"`
	Category string `form:"category" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ProductResponse is one product row
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	VariantName string          `json:"variant_name,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       *int            `json:"stock"`
	IsPreorder  bool            `json:"is_preorder"`
	SoldQty     int             `json:"sold_qty"`
	Status      string          `json:"status"`
	Category    string          `json:"category,omitempty"`
	Deleted     bool            `json:"deleted"`
	Selected    bool            `json:"selected"`
}

// ProductGroupResponse is one group with its members
type ProductGroupResponse struct {
	GroupKey    string                `json:"group_key"`
	BaseName    string                `json:"base_name"`
	Status      string                `json:"status"`
	Category    string                `json:"category,omitempty"`
	ImageURL    string                `json:"image_url,omitempty"`
	PriceMin    decimal.Decimal       `json:"price_min"`
	PriceMax    decimal.Decimal       `json:"price_max"`
	TotalStock  int                   `json:"total_stock"`
	TotalSold   int                   `json:"total_sold"`
	HasPreorder bool                  `json:"has_preorder"`
	MainProduct *ProductResponse      `json:"main_product,omitempty"`
	Variants    []ProductResponse     `json:"variants"`
	Selection   selection.HeaderState `json:"selection"`
}

// GroupListResponse is a page of groups plus the selection header state
// over the products visible on that page.
type GroupListResponse struct {
	shared.Paginated[ProductGroupResponse]
	SelectedCount int                   `json:"selected_count"`
	Header        selection.HeaderState `json:"header"`
	VisibleIDs    []uuid.UUID           `json:"visible_ids"`
}

// RestockRequest adds stock to one SKU
type RestockRequest struct {
	SKU      string `json:"sku" binding:"required,max=100"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// RestockResponse reports a restock
type RestockResponse struct {
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	Message        string `json:"message"`
	AllocatedCount int    `json:"allocated_count"`
	RefreshFailed  bool   `json:"refresh_failed"`
}

// ToProductResponse converts a product, marking whether it is selected
func ToProductResponse(p *catalog.Product, selected bool) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		VariantName: p.Key().VariantName,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		IsPreorder:  p.IsPreorder(),
		SoldQty:     p.SoldQty,
		Status:      string(p.Status),
		Category:    p.Category,
		Deleted:     p.IsDeleted(),
		Selected:    selected,
	}
}

// ToProductGroupResponse converts a group. isSelected reports product
// selection; header is the group's own select-all state.
func ToProductGroupResponse(g *catalog.ProductGroup, isSelected func(uuid.UUID) bool, header selection.HeaderState) ProductGroupResponse {
	resp := ProductGroupResponse{
		GroupKey:    g.GroupKey,
		BaseName:    g.BaseName,
		Status:      string(g.Status()),
		Category:    g.Category,
		ImageURL:    g.ImageURL,
		PriceMin:    g.PriceMin,
		PriceMax:    g.PriceMax,
		TotalStock:  g.TotalStock,
		TotalSold:   g.TotalSold,
		HasPreorder: g.HasPreorder,
		Variants:    make([]ProductResponse, len(g.Variants)),
		Selection:   header,
	}
	if g.MainProduct != nil {
		main := ToProductResponse(g.MainProduct, isSelected(g.MainProduct.ID))
		resp.MainProduct = &main
	}
	for i := range g.Variants {
		resp.Variants[i] = ToProductResponse(&g.Variants[i], isSelected(g.Variants[i].ID))
	}
	return resp
}
