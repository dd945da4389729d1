package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/application/catalog"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/domain/selection"
)

// ReloadResponse reports the records and selection after a reload
type ReloadResponse struct {
	Count     int                   `json:"count"`
	Selection console.SelectionView `json:"selection"`
}

// ProductHandler serves the grouped catalog
type ProductHandler struct {
	SessionHandler
	products *catalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(sessions *console.Registry, products *catalog.ProductService) *ProductHandler {
	return &ProductHandler{SessionHandler: SessionHandler{sessions: sessions}, products: products}
}

// ListGroups returns a page of product groups
// GET /api/v1/console/products/groups
func (h *ProductHandler) ListGroups(c *gin.Context) {
	var filter catalog.GroupListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, h.products.ListGroups(sess, filter))
}

// Reload re-fetches products from the ledger
// POST /api/v1/console/products/reload
func (h *ProductHandler) Reload(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.ReloadProducts(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReloadResponse{
		Count:     len(sess.Products()),
		Selection: sess.Selection(selection.KindProducts),
	})
}

// BulkDelete deletes the selected products
// POST /api/v1/console/products/bulk-delete
func (h *ProductHandler) BulkDelete(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	summary, err := h.products.BulkDeleteSelected(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Restock adds stock to one SKU
// POST /api/v1/console/products/restock
func (h *ProductHandler) Restock(c *gin.Context) {
	var req catalog.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.products.Restock(c.Request.Context(), sess, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
