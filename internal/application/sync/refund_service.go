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

// RefundSyncService turns storefront refunds into ERP return orders.
type RefundSyncService struct {
	base
	defaults erp.RecordDefaults
}

// NewRefundSyncService creates a refund sync service.
func NewRefundSyncService(deps Deps, defaults erp.RecordDefaults) *RefundSyncService {
	return &RefundSyncService{base: newBase(deps), defaults: defaults}
}

// Process submits a refund as an ERP return order against the original
// sale.
func (s *RefundSyncService) Process(ctx context.Context, refund *storefront.Refund) *syncdomain.Outcome {
	ctx, span := telemetry.StartServiceSpan(ctx, "refund_sync", "process")
	defer span.End()

	start := time.Now()
	outcome, label := s.push(ctx, span, refund)
	s.finish(ctx, syncdomain.EntityRefund, syncdomain.MethodCreateReturnOrder, syncdomain.DirectionInbound, outcome, label, time.Since(start))
	return outcome
}

func (s *RefundSyncService) push(ctx context.Context, span trace.Span, refund *storefront.Refund) (*syncdomain.Outcome, string) {
	entityID := strconv.FormatInt(refund.ID, 10)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, strconv.FormatInt(refund.OrderID, 10),
		"refund_id", entityID,
	)

	record, err := erp.BuildReturnRecord(refund, s.defaults)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("refund payload rejected before send",
			zap.String("refund_id", entityID),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityRefund, entityID, err.Error()), telemetry.OutcomeError
	}

	result, err := s.call(ctx, syncdomain.MethodCreateReturnOrder, record)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("return order submission failed",
			zap.String("refund_id", entityID),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityRefund, entityID, err.Error()), telemetry.OutcomeError
	}
	if !result.Success {
		telemetry.AddEvent(span, "erp_rejected", "reason", result.Error)
		s.logger.Warn("return order rejected by erp",
			zap.String("refund_id", entityID),
			zap.String("reason", result.Error),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityRefund, entityID, result.Error), telemetry.OutcomeRejected
	}

	s.logger.Info("refund synced",
		zap.String("refund_id", entityID),
		zap.String("return_number", record.ReturnNumber),
	)
	return syncdomain.SuccessOutcome(syncdomain.EntityRefund, entityID).WithReference(erpReference(result.Data)), telemetry.OutcomeSuccess
}
