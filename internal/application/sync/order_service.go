package sync

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/domain/erp"
	"github.com/erplink/bridge/internal/domain/storefront"
	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/telemetry"
)

// OrderSyncService drives order lifecycle events into the ERP: creation
// submits a sales order, updates and cancellations resolve to at most one
// status change.
type OrderSyncService struct {
	base
	customers   *CustomerSyncService
	defaults    erp.RecordDefaults
	fetchDetail bool
}

// NewOrderSyncService creates an order sync service. When fetchDetail is
// set, status updates first verify the order exists on the ERP side.
func NewOrderSyncService(deps Deps, customers *CustomerSyncService, defaults erp.RecordDefaults, fetchDetail bool) *OrderSyncService {
	return &OrderSyncService{
		base:        newBase(deps),
		customers:   customers,
		defaults:    defaults,
		fetchDetail: fetchDetail,
	}
}

// ProcessNew submits a newly created order as an ERP sales order. When the
// order carries a customer profile the customer is registered first; a
// customer failure is logged and the order still goes out.
func (s *OrderSyncService) ProcessNew(ctx context.Context, order *storefront.Order) *syncdomain.Outcome {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_sync", "process_new")
	defer span.End()

	start := time.Now()
	outcome, label := s.submit(ctx, span, order)
	s.finish(ctx, syncdomain.EntityOrder, syncdomain.MethodCreateSalesOrder, syncdomain.DirectionInbound, outcome, label, time.Since(start))
	return outcome
}

// ProcessUpdate resolves an order update to its target ERP status and
// pushes it. Resolution priority is fixed: cancellation, full fulfillment,
// partial fulfillment, payment capture. When no rule applies the event is
// acknowledged without an ERP call.
func (s *OrderSyncService) ProcessUpdate(ctx context.Context, order *storefront.Order) *syncdomain.Outcome {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_sync", "process_update")
	defer span.End()

	start := time.Now()
	outcome, label := s.pushStatus(ctx, span, order)
	s.finish(ctx, syncdomain.EntityOrder, syncdomain.MethodSetOrderStatus, syncdomain.DirectionInbound, outcome, label, time.Since(start))
	return outcome
}

// submit runs the creation pipeline: transform, customer stage, order
// stage. The transform runs first so a structurally broken order never
// causes any ERP traffic, customer registration included.
func (s *OrderSyncService) submit(ctx context.Context, span trace.Span, order *storefront.Order) (*syncdomain.Outcome, string) {
	entityID := strconv.FormatInt(order.ID, 10)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, entityID,
		telemetry.SpanAttrOrderNumber, erp.OrderReference(order),
	)

	record, err := erp.BuildOrderRecord(order, s.defaults)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("order payload rejected before send",
			zap.String("order_id", entityID),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, err.Error()), telemetry.OutcomeError
	}

	var customerNote string
	if order.Customer != nil {
		if co := s.customers.ProcessCreate(ctx, order.Customer); !co.Success {
			telemetry.AddEvent(span, "customer_stage_failed", "reason", co.Error)
			s.logger.Warn("customer stage failed, order continues",
				zap.String("order_id", entityID),
				zap.String("customer_error", co.Error),
			)
			customerNote = "customer sync failed: " + co.Error
		}
	}

	result, err := s.call(ctx, syncdomain.MethodCreateSalesOrder, record)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("order submission failed",
			zap.String("order_id", entityID),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, err.Error()), telemetry.OutcomeError
	}
	if !result.Success {
		telemetry.AddEvent(span, "erp_rejected", "reason", result.Error)
		s.logger.Warn("order rejected by erp",
			zap.String("order_id", entityID),
			zap.String("reason", result.Error),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, result.Error), telemetry.OutcomeRejected
	}

	outcome := syncdomain.SuccessOutcome(syncdomain.EntityOrder, entityID).WithReference(erpReference(result.Data))
	if customerNote != "" {
		outcome.WithMessage(customerNote)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrReference, outcome.Reference)
	s.logger.Info("order synced",
		zap.String("order_id", entityID),
		zap.String("order_number", record.OrderNumber),
		zap.String("erp_reference", outcome.Reference),
	)
	return outcome, telemetry.OutcomeSuccess
}

// pushStatus runs the update pipeline: resolve, optionally verify, set.
func (s *OrderSyncService) pushStatus(ctx context.Context, span trace.Span, order *storefront.Order) (*syncdomain.Outcome, string) {
	entityID := strconv.FormatInt(order.ID, 10)
	reference := erp.OrderReference(order)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, entityID,
		telemetry.SpanAttrOrderNumber, reference,
	)

	status, ok := syncdomain.ResolveStatus(order)
	if !ok {
		telemetry.AddEvent(span, "status_resolution_skipped")
		s.logger.Debug("order update carries no status change",
			zap.String("order_id", entityID),
		)
		return syncdomain.SuccessOutcome(syncdomain.EntityOrder, entityID).WithMessage("no update needed"), telemetry.OutcomeSuccess
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderStatus, status.String())

	if s.fetchDetail {
		if outcome, label := s.verifyExists(ctx, span, entityID, reference); outcome != nil {
			return outcome, label
		}
	}

	result, err := s.call(ctx, syncdomain.MethodSetOrderStatus, erp.StatusUpdate{
		OrderNumber: reference,
		Status:      status,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("status update failed",
			zap.String("order_id", entityID),
			zap.String("status", status.String()),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, err.Error()), telemetry.OutcomeError
	}
	if !result.Success {
		telemetry.AddEvent(span, "erp_rejected", "reason", result.Error)
		s.logger.Warn("status update rejected by erp",
			zap.String("order_id", entityID),
			zap.String("status", status.String()),
			zap.String("reason", result.Error),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, result.Error), telemetry.OutcomeRejected
	}

	s.logger.Info("order status synced",
		zap.String("order_id", entityID),
		zap.String("status", status.String()),
	)
	return syncdomain.SuccessOutcome(syncdomain.EntityOrder, entityID).WithMessage("status " + status.String()), telemetry.OutcomeSuccess
}

// verifyExists confirms the ERP knows the order before a status write. A
// nil outcome means verification passed and the update may proceed.
func (s *OrderSyncService) verifyExists(ctx context.Context, span trace.Span, entityID, reference string) (*syncdomain.Outcome, string) {
	result, err := s.call(ctx, syncdomain.MethodGetOrderDetail, erp.OrderQuery{OrderNumber: reference})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("order lookup failed",
			zap.String("order_id", entityID),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, err.Error()), telemetry.OutcomeError
	}
	if !result.Success {
		telemetry.AddEvent(span, "order_unknown_to_erp", "reason", result.Error)
		s.logger.Warn("order not found on erp, status update dropped",
			zap.String("order_id", entityID),
			zap.String("order_number", reference),
			zap.String("reason", result.Error),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityOrder, entityID, result.Error), telemetry.OutcomeRejected
	}
	return nil, ""
}
