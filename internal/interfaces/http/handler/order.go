package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/trade"
	"github.com/opsconsole/backend/internal/domain/selection"
)

// OrderHandler serves order items
type OrderHandler struct {
	SessionHandler
	orders *trade.OrderItemService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(sessions *console.Registry, orders *trade.OrderItemService) *OrderHandler {
	return &OrderHandler{SessionHandler: SessionHandler{sessions: sessions}, orders: orders}
}

// ListItems returns a page of order items
// GET /api/v1/console/orders/items
func (h *OrderHandler) ListItems(c *gin.Context) {
	var filter trade.OrderItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, h.orders.ListOrderItems(sess, filter))
}

// Reload re-fetches order items from the ledger
// POST /api/v1/console/orders/reload
func (h *OrderHandler) Reload(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.ReloadOrderItems(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReloadResponse{
		Count:     len(sess.OrderItems()),
		Selection: sess.Selection(selection.KindOrderItems),
	})
}

// BulkDelete deletes the selected non-terminal order items
// POST /api/v1/console/orders/bulk-delete
func (h *OrderHandler) BulkDelete(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	summary, err := h.orders.BulkDeleteSelected(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
