// Package sync contains the application services that carry storefront
// events into the ERP and pull ERP state back out. Every public entry point
// returns an Outcome rather than an error so the webhook layer can always
// produce a deterministic acknowledgment; transport faults, business
// rejections and malformed payloads all end up as unsuccessful outcomes.
package sync

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/telemetry"
)

// Deps bundles the collaborators shared by every sync service. Records and
// Metrics are optional; a nil repository disables the audit trail and a nil
// metrics set disables instrument recording. A nil Logger falls back to a
// no-op logger.
type Deps struct {
	Gateway syncdomain.Gateway
	Records syncdomain.RecordRepository
	Metrics *telemetry.BridgeMetrics
	Logger  *zap.Logger
}

// base carries the shared plumbing embedded by each service: the gateway
// port, per-call metrics and the audit trail.
type base struct {
	gateway syncdomain.Gateway
	records syncdomain.RecordRepository
	metrics *telemetry.BridgeMetrics
	logger  *zap.Logger
}

func newBase(deps Deps) base {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{
		gateway: deps.Gateway,
		records: deps.Records,
		metrics: deps.Metrics,
		logger:  logger,
	}
}

// call issues one ERP operation and stamps the per-call metric. The label
// separates business rejections from transport and credential failures.
func (b *base) call(ctx context.Context, method syncdomain.Method, payload any) (*syncdomain.CallResult, error) {
	start := time.Now()
	result, err := b.gateway.Call(ctx, method, payload)
	if b.metrics != nil {
		label := telemetry.OutcomeSuccess
		switch {
		case err != nil:
			label = telemetry.OutcomeError
		case !result.Success:
			label = telemetry.OutcomeRejected
		}
		b.metrics.RecordERPCall(ctx, method.String(), label, time.Since(start))
	}
	return result, err
}

// finish closes out one entry point: a sync metric with the given outcome
// label and a persisted audit record. Audit failures are logged and
// swallowed, the trail must never change a sync result.
func (b *base) finish(ctx context.Context, kind syncdomain.EntityKind, method syncdomain.Method, direction syncdomain.Direction, outcome *syncdomain.Outcome, label string, took time.Duration) {
	if b.metrics != nil {
		b.metrics.RecordSync(ctx, kind.String(), label, took)
	}
	if b.records == nil {
		return
	}
	record := syncdomain.NewRecord(kind, outcome.EntityID, direction, method).Finish(outcome, took)
	if err := b.records.Save(ctx, record); err != nil {
		b.logger.Warn("sync record not persisted",
			zap.String("entity_kind", kind.String()),
			zap.String("entity_id", outcome.EntityID),
			zap.Error(err),
		)
	}
}

// erpReference extracts the ERP-assigned reference from a successful call's
// data. The ERP answers either a bare string or an object keyed by the
// record kind; anything else yields no reference.
func erpReference(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"ReferenceNumber", "OrderNumber", "ReturnOrderNumber", "CustomerId"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
