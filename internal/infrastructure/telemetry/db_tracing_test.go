package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erplink/bridge/internal/infrastructure/config"
)

type tracedModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	CreatedAt time.Time
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&tracedModel{})
	require.NoError(t, err)

	return db
}

func setupTracerWithRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	return tp, spanRecorder
}

func enabledDBTracingConfig() config.TelemetryConfig {
	return config.TelemetryConfig{
		Enabled:           true,
		DBTraceEnabled:    true,
		DBSlowQueryThresh: 200 * time.Millisecond,
	}
}

func TestNewDBTracingPlugin_DefaultThreshold(t *testing.T) {
	cfg := enabledDBTracingConfig()
	cfg.DBSlowQueryThresh = 0

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	require.NotNil(t, plugin)
	assert.True(t, plugin.enabled)
	assert.Equal(t, defaultSlowQueryThresh, plugin.slowQueryThresh)
}

func TestDBTracingPlugin_Register_Disabled(t *testing.T) {
	db := setupTestDB(t)

	cfg := config.TelemetryConfig{
		Enabled:        true,
		DBTraceEnabled: false,
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	err := plugin.Register(db)

	assert.NoError(t, err)
}

func TestDBTracingPlugin_Register_TelemetryOff(t *testing.T) {
	db := setupTestDB(t)

	// DBTraceEnabled alone is not enough, the whole stack must be on.
	cfg := config.TelemetryConfig{
		Enabled:        false,
		DBTraceEnabled: true,
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	err := plugin.Register(db)

	assert.NoError(t, err)
	assert.False(t, plugin.enabled)
}

func TestDBTracingPlugin_Register_Enabled(t *testing.T) {
	db := setupTestDB(t)

	plugin := NewDBTracingPlugin(enabledDBTracingConfig(), zap.NewNop())
	err := plugin.Register(db)

	assert.NoError(t, err)
}

func TestDBTracingPlugin_Register_DoubleRegistration(t *testing.T) {
	db := setupTestDB(t)

	plugin := NewDBTracingPlugin(enabledDBTracingConfig(), zap.NewNop())

	err := plugin.Register(db)
	assert.NoError(t, err)

	// Second registration fails on duplicate plugin/callback names.
	err = plugin.Register(db)
	assert.Error(t, err)
}

func TestDBTracingPlugin_AfterCallback_RowsAffected(t *testing.T) {
	db := setupTestDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "rows-affected-test")

	plugin := NewDBTracingPlugin(enabledDBTracingConfig(), zap.NewNop())

	db = db.WithContext(ctx)
	models := []tracedModel{{Name: "one"}, {Name: "two"}, {Name: "three"}}
	result := db.Create(&models)
	require.NoError(t, result.Error)

	plugin.afterCallback(result.Statement.DB)
	span.End()

	spans := spanRecorder.Ended()
	require.NotEmpty(t, spans)

	foundRows := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "db.rows_affected" {
			foundRows = true
			assert.Equal(t, int64(3), attr.Value.AsInt64())
			break
		}
	}
	assert.True(t, foundRows, "db.rows_affected attribute should be present")
}

func TestDBTracingPlugin_AfterCallback_RecordNotFound(t *testing.T) {
	db := setupTestDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "not-found-test")

	plugin := NewDBTracingPlugin(enabledDBTracingConfig(), zap.NewNop())

	db = db.WithContext(ctx)
	var result tracedModel
	tx := db.First(&result, 99999)

	// A lookup miss must not mark the span as failed.
	plugin.afterCallback(tx)
	span.End()

	spans := spanRecorder.Ended()
	require.NotEmpty(t, spans)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestDBTracingPlugin_AfterCallback_SlowQueryEvent(t *testing.T) {
	db := setupTestDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "slow-query-test")

	cfg := enabledDBTracingConfig()
	cfg.DBSlowQueryThresh = 1 * time.Nanosecond
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now())
	time.Sleep(1 * time.Millisecond)

	db = db.WithContext(ctx)
	var result tracedModel
	db.First(&result)

	plugin.afterCallback(db.Statement.DB)
	span.End()

	spans := spanRecorder.Ended()
	require.NotEmpty(t, spans)

	foundSlowQuery := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "db.slow_query" && attr.Value.AsBool() {
			foundSlowQuery = true
			break
		}
	}
	assert.True(t, foundSlowQuery, "db.slow_query attribute should be present")

	foundEvent := false
	for _, event := range spans[0].Events() {
		if event.Name == "slow_query_warning" {
			foundEvent = true
			break
		}
	}
	assert.True(t, foundEvent, "slow_query_warning event should be present")
}

func TestDBTracingPlugin_AfterCallback_NonRecordingSpan(t *testing.T) {
	db := setupTestDB(t)

	plugin := NewDBTracingPlugin(enabledDBTracingConfig(), zap.NewNop())

	// No span in the context, the callback must not panic.
	db = db.WithContext(context.Background())
	plugin.afterCallback(db)
}

func TestDBTracingPlugin_Integration(t *testing.T) {
	db := setupTestDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	plugin := NewDBTracingPlugin(enabledDBTracingConfig(), zap.NewNop())
	err := plugin.Register(db)
	require.NoError(t, err)

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "integration-test")

	db = db.WithContext(ctx)
	result := db.Create(&tracedModel{Name: "integration"})
	require.NoError(t, result.Error)

	var found tracedModel
	result = db.First(&found, "name = ?", "integration")
	require.NoError(t, result.Error)
	assert.Equal(t, "integration", found.Name)

	span.End()

	spans := spanRecorder.Ended()
	assert.NotEmpty(t, spans)
}
