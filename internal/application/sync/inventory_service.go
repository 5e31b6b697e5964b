package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/domain/erp"
	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/erpclient"
	"github.com/erplink/bridge/internal/infrastructure/telemetry"
)

// inventoryEntityID tags inventory audit records; a stock pull has no
// per-entity identity.
const inventoryEntityID = "snapshot"

// InventoryService pulls ERP stock levels and keeps the latest normalized
// snapshot available for the ops API.
type InventoryService struct {
	base

	mu     sync.RWMutex
	latest *erp.InventorySnapshot
}

// NewInventoryService creates an inventory service.
func NewInventoryService(deps Deps) *InventoryService {
	return &InventoryService{base: newBase(deps)}
}

// Pull fetches current stock from the ERP, normalizes it and replaces the
// cached snapshot. The snapshot is nil when the pull did not succeed.
func (s *InventoryService) Pull(ctx context.Context) (*erp.InventorySnapshot, *syncdomain.Outcome) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory_sync", "pull")
	defer span.End()

	start := time.Now()
	snapshot, outcome, label := s.pull(ctx, span)
	took := time.Since(start)

	if s.metrics != nil {
		items := 0
		if snapshot != nil {
			items = snapshot.TotalItems()
		}
		s.metrics.RecordInventoryRun(ctx, label, items)
	}
	s.finish(ctx, syncdomain.EntityInventory, syncdomain.MethodGetInventory, syncdomain.DirectionOutbound, outcome, label, took)
	return snapshot, outcome
}

// SyncInventory runs one scheduled pull, satisfying the scheduler's runner
// contract. A failed pull surfaces as an error for the scheduler's log.
func (s *InventoryService) SyncInventory(ctx context.Context) error {
	if _, outcome := s.Pull(ctx); !outcome.Success {
		return fmt.Errorf("inventory pull: %s", outcome.Error)
	}
	return nil
}

// Latest returns the most recently pulled snapshot, or nil before the
// first successful pull.
func (s *InventoryService) Latest() *erp.InventorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *InventoryService) pull(ctx context.Context, span trace.Span) (*erp.InventorySnapshot, *syncdomain.Outcome, string) {
	result, err := s.call(ctx, syncdomain.MethodGetInventory, erp.InventoryQuery{})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("inventory pull failed", zap.Error(err))
		return nil, syncdomain.FailureOutcome(syncdomain.EntityInventory, inventoryEntityID, err.Error()), telemetry.OutcomeError
	}
	if !result.Success {
		telemetry.AddEvent(span, "erp_rejected", "reason", result.Error)
		s.logger.Warn("inventory pull rejected by erp", zap.String("reason", result.Error))
		return nil, syncdomain.FailureOutcome(syncdomain.EntityInventory, inventoryEntityID, result.Error), telemetry.OutcomeRejected
	}

	snapshot, err := erpclient.ParseInventorySnapshot(result.Data, time.Now().UTC())
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("inventory payload unreadable", zap.Error(err))
		return nil, syncdomain.FailureOutcome(syncdomain.EntityInventory, inventoryEntityID, err.Error()), telemetry.OutcomeError
	}

	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	telemetry.SetAttribute(span, telemetry.SpanAttrItemCount, snapshot.TotalItems())
	s.logger.Info("inventory snapshot refreshed",
		zap.Int("locations", len(snapshot.Locations)),
		zap.Int("items", snapshot.TotalItems()),
	)
	outcome := syncdomain.SuccessOutcome(syncdomain.EntityInventory, inventoryEntityID).
		WithMessage(fmt.Sprintf("%d items across %d locations", snapshot.TotalItems(), len(snapshot.Locations)))
	return snapshot, outcome, telemetry.OutcomeSuccess
}
