package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	syncapp "github.com/erplink/bridge/internal/application/sync"
	"github.com/erplink/bridge/internal/domain/erp"
	syncdomain "github.com/erplink/bridge/internal/domain/sync"
	"github.com/erplink/bridge/internal/infrastructure/archive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Mocks
// =============================================================================

// MockGateway is a scripted Gateway implementation.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Call(ctx context.Context, method syncdomain.Method, payload any) (*syncdomain.CallResult, error) {
	args := m.Called(ctx, method, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncdomain.CallResult), args.Error(1)
}

func (m *MockGateway) Probe(ctx context.Context) (bool, string) {
	args := m.Called(ctx)
	return args.Bool(0), args.String(1)
}

// Verify interface compliance
var _ syncdomain.Gateway = (*MockGateway)(nil)

// MockIdempotencyStore is a scripted IdempotencyStore implementation.
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Verify interface compliance
var _ syncdomain.IdempotencyStore = (*MockIdempotencyStore)(nil)

// MockArchiver is a scripted PayloadArchiver implementation.
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, topic, eventID string, payload []byte) error {
	args := m.Called(ctx, topic, eventID, payload)
	return args.Error(0)
}

// Verify interface compliance
var _ archive.PayloadArchiver = (*MockArchiver)(nil)

// MockRecordRepository is a scripted RecordRepository implementation.
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Save(ctx context.Context, record *syncdomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) List(ctx context.Context, filter syncdomain.RecordFilter) ([]*syncdomain.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncdomain.Record), args.Error(1)
}

func (m *MockRecordRepository) CountFailuresSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// Verify interface compliance
var _ syncdomain.RecordRepository = (*MockRecordRepository)(nil)

// =============================================================================
// Test Helper Functions
// =============================================================================

// newSyncServices builds the sync services over a scripted gateway, without
// audit records or metrics.
func newSyncServices(gateway syncdomain.Gateway) (*syncapp.OrderSyncService, *syncapp.CustomerSyncService, *syncapp.RefundSyncService) {
	deps := syncapp.Deps{Gateway: gateway, Logger: zap.NewNop()}
	defaults := erp.RecordDefaults{StoreCode: "WEB", SourceChannel: "storefront"}
	customers := syncapp.NewCustomerSyncService(deps)
	orders := syncapp.NewOrderSyncService(deps, customers, defaults, false)
	refunds := syncapp.NewRefundSyncService(deps, defaults)
	return orders, customers, refunds
}

func successResult(data string) *syncdomain.CallResult {
	result := &syncdomain.CallResult{Success: true}
	if data != "" {
		result.Data = json.RawMessage(data)
	}
	return result
}

func rejectedResult(reason string) *syncdomain.CallResult {
	return &syncdomain.CallResult{Success: false, Error: reason}
}

// signPayload computes the delivery signature the way the storefront does.
func signPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
