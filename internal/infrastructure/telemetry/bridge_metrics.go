package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BridgeMetrics provides the bridge's operational metrics.
// It tracks webhook intake, sync outcomes, outbound ERP calls, credential
// refreshes and inventory pull runs.
type BridgeMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	webhooksReceivedTotal  *Counter
	webhooksDuplicateTotal *Counter
	syncTotal              *Counter
	erpCallsTotal          *Counter
	credentialRefreshTotal *Counter
	inventoryRunsTotal     *Counter

	// Histogram metrics (distributions)
	syncDuration    *Histogram
	erpCallDuration *Histogram

	// Gauge metrics (point-in-time values)
	inventoryItems *Gauge
}

// BridgeMetricsConfig holds configuration for bridge metrics.
type BridgeMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBridgeMetrics creates a new BridgeMetrics instance.
func NewBridgeMetrics(cfg BridgeMetricsConfig) (*BridgeMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := cfg.Meter
	bm := &BridgeMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	// Webhook intake metrics
	bm.webhooksReceivedTotal, err = NewCounter(
		meter,
		"bridge_webhooks_received_total",
		"Total number of webhook deliveries received",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	bm.webhooksDuplicateTotal, err = NewCounter(
		meter,
		"bridge_webhooks_duplicate_total",
		"Total number of webhook deliveries dropped as duplicates",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	// Sync pipeline metrics
	bm.syncTotal, err = NewCounter(
		meter,
		"bridge_sync_total",
		"Total number of sync attempts by entity kind and outcome",
		"{syncs}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "bridge_sync_duration_seconds",
		Description: "End-to-end sync duration by entity kind",
		Unit:        "s",
		Boundaries:  ERPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Outbound ERP call metrics
	bm.erpCallsTotal, err = NewCounter(
		meter,
		"bridge_erp_calls_total",
		"Total number of outbound ERP calls by method and outcome",
		"{calls}",
	)
	if err != nil {
		return nil, err
	}

	bm.erpCallDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "bridge_erp_call_duration_seconds",
		Description: "Outbound ERP call duration by method",
		Unit:        "s",
		Boundaries:  ERPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Credential cache metrics
	bm.credentialRefreshTotal, err = NewCounter(
		meter,
		"bridge_credential_refresh_total",
		"Total number of ERP credential refresh attempts",
		"{refreshes}",
	)
	if err != nil {
		return nil, err
	}

	// Inventory pull metrics
	bm.inventoryRunsTotal, err = NewCounter(
		meter,
		"bridge_inventory_runs_total",
		"Total number of scheduled inventory pull runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.inventoryItems, err = NewGauge(
		meter,
		"bridge_inventory_items",
		"Item count seen in the most recent inventory pull",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Webhook Metrics
// =============================================================================

// RecordWebhookReceived records an accepted webhook delivery.
func (bm *BridgeMetrics) RecordWebhookReceived(ctx context.Context, topic string) {
	bm.webhooksReceivedTotal.Inc(ctx, AttrTopic.String(topic))
}

// RecordDuplicateDelivery records a webhook delivery dropped by the
// idempotency check.
func (bm *BridgeMetrics) RecordDuplicateDelivery(ctx context.Context, topic string) {
	bm.webhooksDuplicateTotal.Inc(ctx, AttrTopic.String(topic))
}

// =============================================================================
// Sync Metrics
// =============================================================================

// RecordSync records the outcome and duration of one sync attempt.
// The entity kind is "order", "customer", "refund" or "inventory".
func (bm *BridgeMetrics) RecordSync(ctx context.Context, entityKind, outcome string, elapsed time.Duration) {
	bm.syncTotal.Inc(ctx,
		AttrEntityKind.String(entityKind),
		AttrOutcome.String(outcome),
	)
	bm.syncDuration.RecordDuration(ctx, elapsed,
		AttrEntityKind.String(entityKind),
	)
}

// =============================================================================
// ERP Call Metrics
// =============================================================================

// RecordERPCall records the outcome and duration of one outbound ERP call.
func (bm *BridgeMetrics) RecordERPCall(ctx context.Context, method, outcome string, elapsed time.Duration) {
	bm.erpCallsTotal.Inc(ctx,
		AttrMethod.String(method),
		AttrOutcome.String(outcome),
	)
	bm.erpCallDuration.RecordDuration(ctx, elapsed,
		AttrMethod.String(method),
	)
}

// RecordCredentialRefresh records an ERP credential refresh attempt.
func (bm *BridgeMetrics) RecordCredentialRefresh(ctx context.Context, success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
	}
	bm.credentialRefreshTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// =============================================================================
// Inventory Metrics
// =============================================================================

// RecordInventoryRun records a completed inventory pull and the item count it saw.
func (bm *BridgeMetrics) RecordInventoryRun(ctx context.Context, outcome string, itemCount int) {
	bm.inventoryRunsTotal.Inc(ctx, AttrOutcome.String(outcome))
	if outcome == OutcomeSuccess {
		bm.inventoryItems.Record(ctx, int64(itemCount))
	}
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when the meter provider is nil.
var ErrMeterNil = &MetricsError{Op: "NewBridgeMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
