package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/console"
	"github.com/opsconsole/backend/internal/application/consolidation"
	"github.com/opsconsole/backend/internal/application/report"
	domain "github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/interfaces/http/middleware"
)

// ConfirmRequest starts a run
type ConfirmRequest struct {
	ShippingMethod string `json:"shipping_method" binding:"required,shipping_method"`
}

// RunListQuery bounds the run history
type RunListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// DialogStateResponse is the consolidation dialog of a session
type DialogStateResponse struct {
	Phase          consolidation.Phase          `json:"phase"`
	SelectedCount  int                          `json:"selected_count"`
	EligibleCount  int                          `json:"eligible_count"`
	LastSettlement *report.ConsolidationSummary `json:"last_settlement,omitempty"`
}

// RunUnitResponse is one unit of a recorded run
type RunUnitResponse struct {
	MemberID     string      `json:"member_id"`
	CustomerName string      `json:"customer_name"`
	ItemIDs      []uuid.UUID `json:"item_ids"`
	Status       string      `json:"status"`
	CheckoutID   *uuid.UUID  `json:"checkout_id,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// RunResponse is a recorded run
type RunResponse struct {
	ID             uuid.UUID         `json:"id"`
	OperatorID     string            `json:"operator_id"`
	ShippingMethod string            `json:"shipping_method"`
	Outcome        string            `json:"outcome"`
	SelectedCount  int               `json:"selected_count"`
	EligibleCount  int               `json:"eligible_count"`
	SkippedCount   int               `json:"skipped_count"`
	RefreshFailed  bool              `json:"refresh_failed"`
	Units          []RunUnitResponse `json:"units"`
	StartedAt      time.Time         `json:"started_at"`
	SettledAt      time.Time         `json:"settled_at"`
}

const defaultRunLimit = 20

// ConsolidationHandler drives the consolidation dialog
type ConsolidationHandler struct {
	SessionHandler
	runs domain.RunRepository
}

// NewConsolidationHandler creates a new ConsolidationHandler
func NewConsolidationHandler(sessions *console.Registry, runs domain.RunRepository) *ConsolidationHandler {
	return &ConsolidationHandler{SessionHandler: SessionHandler{sessions: sessions}, runs: runs}
}

// State returns the dialog phase and the last settlement
// GET /api/v1/console/consolidation
func (h *ConsolidationHandler) State(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, dialogState(sess))
}

// Open moves the dialog to confirming
// POST /api/v1/console/consolidation/open
func (h *ConsolidationHandler) Open(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Consolidation().Open(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dialogState(sess))
}

// Cancel closes the dialog without running
// POST /api/v1/console/consolidation/cancel
func (h *ConsolidationHandler) Cancel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Consolidation().Cancel(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dialogState(sess))
}

// Confirm runs consolidation and returns its summary. The response is
// written once every unit has been attempted.
// POST /api/v1/console/consolidation/confirm
func (h *ConsolidationHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	method, err := trade.ParseShippingMethod(req.ShippingMethod)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sess, ok := h.session(c)
	if !ok {
		return
	}

	settlement, err := sess.Consolidation().Confirm(c.Request.Context(), sess, method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settlement.Summary)
}

// Runs lists the tenant's recent runs, newest first
// GET /api/v1/console/consolidation/runs
func (h *ConsolidationHandler) Runs(c *gin.Context) {
	var query RunListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultRunLimit
	}

	runs, err := h.runs.FindRecent(c.Request.Context(), middleware.GetTenantID(c), query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]RunResponse, len(runs))
	for i := range runs {
		out[i] = toRunResponse(&runs[i])
	}
	h.Success(c, out)
}

func dialogState(sess *console.Session) DialogStateResponse {
	state := sess.Consolidation().State()
	items, selected := sess.ConsolidationInput()

	resp := DialogStateResponse{
		Phase:         state.Phase,
		SelectedCount: len(selected),
		EligibleCount: len(trade.SelectEligible(items, selected)),
	}
	if state.LastSettlement != nil {
		summary := state.LastSettlement.Summary
		resp.LastSettlement = &summary
	}
	return resp
}

func toRunResponse(r *domain.Run) RunResponse {
	units := make([]RunUnitResponse, len(r.Units))
	for i, u := range r.Units {
		units[i] = RunUnitResponse{
			MemberID:     u.MemberID,
			CustomerName: u.CustomerName,
			ItemIDs:      u.ItemIDs,
			Status:       string(u.Status),
			CheckoutID:   u.CheckoutID,
			Reason:       string(u.Reason),
			Message:      u.Message,
		}
	}
	return RunResponse{
		ID:             r.ID,
		OperatorID:     r.OperatorID,
		ShippingMethod: string(r.ShippingMethod),
		Outcome:        string(r.Outcome),
		SelectedCount:  r.SelectedCount,
		EligibleCount:  r.EligibleCount,
		SkippedCount:   r.SkippedCount,
		RefreshFailed:  r.RefreshFailed,
		Units:          units,
		StartedAt:      r.StartedAt,
		SettledAt:      r.SettledAt,
	}
}
