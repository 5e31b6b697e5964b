package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/infrastructure/telemetry"
)

func TestNewBridgeMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBridgeMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBridgeMetrics: meter cannot be nil", err.Error())
}

func TestBridgeMetrics_RecordWebhookReceived(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordWebhookReceived(ctx, "orders/create")
	bm.RecordWebhookReceived(ctx, "customers/update")
}

func TestBridgeMetrics_RecordDuplicateDelivery(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordDuplicateDelivery(ctx, "orders/create")
}

func TestBridgeMetrics_RecordSync(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordSync(ctx, "order", telemetry.OutcomeSuccess, 120*time.Millisecond)
	bm.RecordSync(ctx, "customer", telemetry.OutcomeRejected, 80*time.Millisecond)
	bm.RecordSync(ctx, "refund", telemetry.OutcomeError, 2*time.Second)
}

func TestBridgeMetrics_RecordERPCall(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordERPCall(ctx, "SaveSalesInvoice", telemetry.OutcomeSuccess, 450*time.Millisecond)
	bm.RecordERPCall(ctx, "SaveCustomerMaster", telemetry.OutcomeError, 30*time.Second)
}

func TestBridgeMetrics_RecordCredentialRefresh(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordCredentialRefresh(ctx, true)
	bm.RecordCredentialRefresh(ctx, false)
}

func TestBridgeMetrics_RecordInventoryRun(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBridgeMetrics(telemetry.BridgeMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic, the item gauge only updates on success
	bm.RecordInventoryRun(ctx, telemetry.OutcomeSuccess, 1250)
	bm.RecordInventoryRun(ctx, telemetry.OutcomeError, 0)
}

func TestMetricsError(t *testing.T) {
	err := &telemetry.MetricsError{Op: "TestOp", Err: "something went wrong"}
	assert.Equal(t, "TestOp: something went wrong", err.Error())
}
