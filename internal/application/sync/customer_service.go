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

// CustomerSyncService pushes storefront customer events into the ERP's
// customer master.
type CustomerSyncService struct {
	base
}

// NewCustomerSyncService creates a customer sync service.
func NewCustomerSyncService(deps Deps) *CustomerSyncService {
	return &CustomerSyncService{base: newBase(deps)}
}

// ProcessCreate registers a new storefront customer with the ERP.
func (s *CustomerSyncService) ProcessCreate(ctx context.Context, customer *storefront.Customer) *syncdomain.Outcome {
	return s.process(ctx, customer, syncdomain.MethodAddCustomer, "process_create")
}

// ProcessUpdate propagates a customer profile change to the ERP.
func (s *CustomerSyncService) ProcessUpdate(ctx context.Context, customer *storefront.Customer) *syncdomain.Outcome {
	return s.process(ctx, customer, syncdomain.MethodModifyCustomer, "process_update")
}

func (s *CustomerSyncService) process(ctx context.Context, customer *storefront.Customer, method syncdomain.Method, op string) *syncdomain.Outcome {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer_sync", op)
	defer span.End()

	start := time.Now()
	outcome, label := s.push(ctx, span, customer, method)
	s.finish(ctx, syncdomain.EntityCustomer, method, syncdomain.DirectionInbound, outcome, label, time.Since(start))
	return outcome
}

// push transforms the customer and issues the ERP call. A missing contact
// identifier fails before any network traffic.
func (s *CustomerSyncService) push(ctx context.Context, span trace.Span, customer *storefront.Customer, method syncdomain.Method) (*syncdomain.Outcome, string) {
	entityID := strconv.FormatInt(customer.ID, 10)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, entityID,
		telemetry.SpanAttrMethodID, method.String(),
	)

	record, err := erp.BuildCustomerRecord(customer)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("customer payload rejected before send",
			zap.String("customer_id", entityID),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityCustomer, entityID, err.Error()), telemetry.OutcomeError
	}

	result, err := s.call(ctx, method, record)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("customer sync failed",
			zap.String("customer_id", entityID),
			zap.String("method", method.String()),
			zap.Error(err),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityCustomer, entityID, err.Error()), telemetry.OutcomeError
	}
	if !result.Success {
		telemetry.AddEvent(span, "erp_rejected", "reason", result.Error)
		s.logger.Warn("customer rejected by erp",
			zap.String("customer_id", entityID),
			zap.String("reason", result.Error),
		)
		return syncdomain.FailureOutcome(syncdomain.EntityCustomer, entityID, result.Error), telemetry.OutcomeRejected
	}

	s.logger.Info("customer synced",
		zap.String("customer_id", entityID),
		zap.String("method", method.String()),
	)
	return syncdomain.SuccessOutcome(syncdomain.EntityCustomer, entityID).WithReference(erpReference(result.Data)), telemetry.OutcomeSuccess
}
