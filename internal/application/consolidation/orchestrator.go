// Package consolidation drives a consolidation run: it turns an operator's
// order selection into one checkout per customer through the ledger.
package consolidation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/application/report"
	"github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Phase is the state of the consolidation dialog
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseConfirming Phase = "confirming"
	PhaseRunning    Phase = "running"
)

// Workspace is the session state a run reads from and settles into.
// Implementations serialize access themselves.
type Workspace interface {
	TenantID() uuid.UUID
	OperatorID() string
	// ConsolidationInput returns a snapshot of the loaded order items and
	// the selected order item ids.
	ConsolidationInput() ([]trade.OrderItem, []uuid.UUID)
	// ReplaceOrderItems installs freshly fetched items and prunes the
	// selection against them.
	ReplaceOrderItems(ctx context.Context, items []trade.OrderItem)
	// DeselectOrderItems removes ids from the selection.
	DeselectOrderItems(ctx context.Context, ids []uuid.UUID)
}

// Settlement is the outcome of a settled run
type Settlement struct {
	Run     *consolidation.Run
	Summary report.ConsolidationSummary
}

// State is a point-in-time view of an orchestrator
type State struct {
	Phase          Phase
	LastSettlement *Settlement
}

// Dependencies are shared by every orchestrator
type Dependencies struct {
	Checkouts ledger.CheckoutGateway
	Members   ledger.MemberDirectory
	Records   ledger.RecordSource
	Runs      consolidation.RunRepository
	Reporter  *report.Reporter
	Metrics   *telemetry.ConsolidationMetrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Orchestrator is the per-session consolidation state machine:
//
//	Idle -> Confirming -> Running -> Settled -> Idle
//
// Settling closes the dialog, so the machine rests in Idle with the
// outcome kept as the last settlement. Running is never re-entered; a
// second Confirm while running fails with shared.ErrRunInProgress.
type Orchestrator struct {
	deps *Dependencies

	mu    sync.Mutex
	phase Phase
	last  *Settlement
}

// NewOrchestrator creates an idle orchestrator
func NewOrchestrator(deps *Dependencies) *Orchestrator {
	if deps.Reporter == nil {
		deps.Reporter = report.NewReporter()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps, phase: PhaseIdle}
}

// State returns the current phase and the last settlement
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{Phase: o.phase, LastSettlement: o.last}
}

// Open moves Idle to Confirming. Opening an open dialog is a no-op.
func (o *Orchestrator) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.phase {
	case PhaseRunning:
		return shared.ErrRunInProgress
	default:
		o.phase = PhaseConfirming
		return nil
	}
}

// Cancel moves Confirming back to Idle
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.phase {
	case PhaseRunning:
		return shared.ErrRunInProgress
	default:
		o.phase = PhaseIdle
		return nil
	}
}

// Confirm runs consolidation for the eligible selected items of ws.
//
// It returns a *consolidation.ValidationError without calling the ledger
// when the shipping method is unknown or no selected item is eligible.
// Otherwise it always settles: per-unit failures are part of the
// settlement, never an error. The run is not cancelled with ctx.
func (o *Orchestrator) Confirm(ctx context.Context, ws Workspace, method trade.ShippingMethod) (*Settlement, error) {
	items, selected, err := o.begin(ws, method)
	if err != nil {
		return nil, err
	}

	var settlement *Settlement
	defer func() {
		o.mu.Lock()
		if settlement != nil {
			o.last = settlement
		}
		o.phase = PhaseIdle
		o.mu.Unlock()
	}()

	settlement = o.execute(context.WithoutCancel(ctx), ws, method, selected, items)
	return settlement, nil
}

// begin validates under the lock and moves Confirming to Running
func (o *Orchestrator) begin(ws Workspace, method trade.ShippingMethod) ([]trade.OrderItem, []uuid.UUID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.phase {
	case PhaseRunning:
		return nil, nil, shared.ErrRunInProgress
	case PhaseConfirming:
	default:
		return nil, nil, shared.NewDomainError(shared.ErrInvalidState.Code, "Open the consolidation dialog before confirming")
	}

	if !method.IsValid() {
		return nil, nil, consolidation.NewValidationError(
			shared.NewDomainError("INVALID_SHIPPING_METHOD", fmt.Sprintf("Unknown shipping method: %q", method)))
	}

	items, selected := ws.ConsolidationInput()
	eligible := trade.SelectEligible(items, selected)
	if len(eligible) == 0 {
		o.phase = PhaseIdle
		return nil, nil, consolidation.NewValidationError(shared.ErrNoEligibleItems)
	}

	o.phase = PhaseRunning
	return eligible, selected, nil
}

func (o *Orchestrator) execute(ctx context.Context, ws Workspace, method trade.ShippingMethod, selected []uuid.UUID, eligible []trade.OrderItem) *Settlement {
	d := o.deps
	tenantID := ws.TenantID()

	ctx, span := telemetry.StartServiceSpan(ctx, "consolidation", "run",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOperatorID, ws.OperatorID(),
		telemetry.SpanAttrShippingMethod, string(method),
		telemetry.SpanAttrItemCount, len(eligible),
	)
	defer span.End()

	run := consolidation.NewRun(tenantID, ws.OperatorID(), method, d.Now())
	run.SelectedCount = len(selected)
	run.EligibleCount = len(eligible)
	run.SkippedCount = len(selected) - len(eligible)

	units := trade.PartitionByCustomer(eligible)
	telemetry.SetAttributes(span, telemetry.SpanAttrUnitCount, len(units))
	resolveErr := o.attachContacts(ctx, tenantID, units)

	for i := range units {
		var result consolidation.UnitResult
		if resolveErr != nil {
			result = unresolvedUnit(&units[i], resolveErr)
		} else {
			result = o.runUnit(ctx, tenantID, method, &units[i])
		}
		run.Units = append(run.Units, result)
		d.Metrics.RecordUnit(ctx, result.Succeeded(), string(result.Reason), len(result.ItemIDs))
	}

	o.settle(ctx, ws, run)
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(run.Outcome))

	return &Settlement{Run: run, Summary: d.Reporter.Consolidation(run)}
}

// attachContacts resolves every unit's contact in one directory call. A
// failed lookup is returned and no unit is attempted.
func (o *Orchestrator) attachContacts(ctx context.Context, tenantID uuid.UUID, units []trade.ConsolidationUnit) error {
	memberIDs := make([]string, len(units))
	for i := range units {
		memberIDs[i] = units[i].MemberID
	}

	contacts, err := o.deps.Members.ResolveContacts(ctx, tenantID, memberIDs)
	if err != nil {
		o.log(ctx).Warn("contact lookup failed; no unit attempted",
			zap.Int("unit_count", len(units)),
			zap.Error(err),
		)
		return err
	}
	for i := range units {
		units[i].Contact = contacts[units[i].MemberID]
	}
	return nil
}

// unresolvedUnit fails a unit whose contact could not be looked up
func unresolvedUnit(unit *trade.ConsolidationUnit, cause error) consolidation.UnitResult {
	err := &consolidation.ExternalCallError{
		Step:     consolidation.ReasonResolveContacts,
		MemberID: unit.MemberID,
		Cause:    shared.NewDomainError(shared.ErrExternalCall.Code, cause.Error()),
	}
	return consolidation.UnitResult{
		MemberID:     unit.MemberID,
		CustomerName: unit.CustomerName,
		ItemIDs:      unit.ItemIDs(),
		Status:       consolidation.UnitFailed,
		Reason:       consolidation.ReasonResolveContacts,
		Message:      err.Error(),
	}
}

// runUnit performs create_checkout then link_order_items for one customer
func (o *Orchestrator) runUnit(ctx context.Context, tenantID uuid.UUID, method trade.ShippingMethod, unit *trade.ConsolidationUnit) consolidation.UnitResult {
	d := o.deps
	ctx, span := telemetry.StartServiceSpan(ctx, "consolidation", "unit",
		telemetry.SpanAttrMemberID, unit.MemberID,
		telemetry.SpanAttrItemCount, len(unit.Items),
	)
	defer span.End()

	result := consolidation.UnitResult{
		MemberID:     unit.MemberID,
		CustomerName: unit.CustomerName,
		ItemIDs:      unit.ItemIDs(),
		Status:       consolidation.UnitFailed,
	}
	log := o.log(ctx).With(
		zap.String("member_id", unit.MemberID),
		zap.Int("item_count", len(unit.Items)),
	)

	if !unit.Contact.HasIdentity() {
		err := &consolidation.IdentityMissingError{MemberID: unit.MemberID, CustomerName: unit.CustomerName}
		result.Reason = consolidation.ReasonIdentityMissing
		result.Message = err.Error()
		telemetry.RecordError(span, err)
		log.Warn("consolidation unit skipped", zap.Error(err))
		return result
	}

	start := d.Now()
	created := d.Checkouts.CreateCheckout(ctx, ledger.CheckoutRequest{
		TenantID:       tenantID,
		Identity:       unit.Contact.MessagingID,
		ReceiverName:   unit.Contact.ReceiverName,
		ReceiverPhone:  unit.Contact.ReceiverPhone,
		PickupPoint:    unit.Contact.PickupPoint,
		ShippingMethod: method,
	})
	d.Metrics.RecordCall(ctx, string(consolidation.ReasonCreateCheckout), created.IsOk(), d.Now().Sub(start))
	if !created.IsOk() {
		err := &consolidation.ExternalCallError{Step: consolidation.ReasonCreateCheckout, MemberID: unit.MemberID, Cause: created.Failure()}
		result.Reason = consolidation.ReasonCreateCheckout
		result.Message = created.Failure().Message
		telemetry.RecordError(span, err)
		log.Warn("consolidation unit failed", zap.Error(err))
		return result
	}

	checkoutID := created.Value()
	result.CheckoutID = &checkoutID
	telemetry.SetAttributes(span, telemetry.SpanAttrCheckoutID, checkoutID.String())

	start = d.Now()
	linked := d.Checkouts.LinkOrderItems(ctx, tenantID, checkoutID, result.ItemIDs)
	d.Metrics.RecordCall(ctx, string(consolidation.ReasonLinkOrderItems), linked.IsOk(), d.Now().Sub(start))
	if !linked.IsOk() {
		err := &consolidation.ExternalCallError{Step: consolidation.ReasonLinkOrderItems, MemberID: unit.MemberID, Cause: linked.Failure()}
		result.Reason = consolidation.ReasonLinkOrderItems
		result.Message = linked.Failure().Message
		telemetry.RecordError(span, err)
		log.Warn("consolidation unit failed; checkout left without items",
			zap.String("checkout_id", checkoutID.String()),
			zap.Error(err),
		)
		return result
	}

	result.Status = consolidation.UnitSucceeded
	telemetry.AddEvent(span, "unit_succeeded")
	return result
}

// settle re-reads the order items, records the run and classifies it
func (o *Orchestrator) settle(ctx context.Context, ws Workspace, run *consolidation.Run) {
	d := o.deps
	log := o.log(ctx)

	refreshed, err := d.Records.FetchOrderItems(ctx, run.TenantID)
	if err != nil {
		run.RefreshFailed = true
		log.Warn("order refresh after consolidation failed", zap.Error(err))
		succeeded := make([]uuid.UUID, 0)
		for i := range run.Units {
			if run.Units[i].Succeeded() {
				succeeded = append(succeeded, run.Units[i].ItemIDs...)
			}
		}
		ws.DeselectOrderItems(ctx, succeeded)
	} else {
		ws.ReplaceOrderItems(ctx, refreshed)
	}

	run.Settle(d.Now())
	d.Metrics.RecordRun(ctx, run.TenantID.String(), string(run.Outcome), run.Duration())

	if d.Runs != nil {
		if err := d.Runs.Save(ctx, run); err != nil {
			log.Error("failed to record consolidation run", zap.String("run_id", run.ID.String()), zap.Error(err))
		}
	}

	log.Info("consolidation run settled",
		zap.String("run_id", run.ID.String()),
		zap.String("outcome", string(run.Outcome)),
		zap.Int("succeeded", run.SucceededCount()),
		zap.Int("units", len(run.Units)),
		zap.Int("skipped", run.SkippedCount),
	)
}

// log prefers the request logger carried in ctx
func (o *Orchestrator) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, logger.FromContextOr(ctx, o.deps.Logger))
}
