package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/domain/selection"
)

// ToggleRequest flips one record in or out of the selection
type ToggleRequest struct {
	ID uuid.UUID `json:"id" binding:"required"`
}

// SelectAllRequest carries the ids visible under the current filter. A
// product page lists every member of every group, so the count has no fixed
// bound; the body limit caps the payload.
type SelectAllRequest struct {
	VisibleIDs []uuid.UUID `json:"visible_ids" binding:"required"`
}

// ToggleResponse reports the record's new membership
type ToggleResponse struct {
	ID        uuid.UUID             `json:"id"`
	Selected  bool                  `json:"selected"`
	Selection console.SelectionView `json:"selection"`
}

// SelectAllResponse reports the header state after select-all
type SelectAllResponse struct {
	Header    selection.HeaderState `json:"header"`
	Selection console.SelectionView `json:"selection"`
}

// SelectionHandler serves one of the two selections of a session
type SelectionHandler struct {
	SessionHandler
	kind selection.Kind
}

// NewSelectionHandler creates a handler for the selection of kind
func NewSelectionHandler(sessions *console.Registry, kind selection.Kind) *SelectionHandler {
	return &SelectionHandler{SessionHandler: SessionHandler{sessions: sessions}, kind: kind}
}

// Get returns the current selection
func (h *SelectionHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, sess.Selection(h.kind))
}

// Toggle flips one id
func (h *SelectionHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	selected, err := sess.Toggle(c.Request.Context(), h.kind, req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToggleResponse{ID: req.ID, Selected: selected, Selection: sess.Selection(h.kind)})
}

// SelectAll toggles every visible id in or out together
func (h *SelectionHandler) SelectAll(c *gin.Context) {
	var req SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	header, err := sess.SelectAllVisible(c.Request.Context(), h.kind, req.VisibleIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SelectAllResponse{Header: header, Selection: sess.Selection(h.kind)})
}

// Clear empties the selection
func (h *SelectionHandler) Clear(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.ClearSelection(c.Request.Context(), h.kind); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sess.Selection(h.kind))
}
