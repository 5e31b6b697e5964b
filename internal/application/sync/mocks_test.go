package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/erplink/bridge/internal/domain/storefront"
	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

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

func testDeps(gateway syncdomain.Gateway, records syncdomain.RecordRepository) Deps {
	return Deps{Gateway: gateway, Records: records, Logger: zap.NewNop()}
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

func testCustomer() *storefront.Customer {
	return &storefront.Customer{
		ID:        7011,
		FirstName: "Asha",
		LastName:  "Nair",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func testOrder() *storefront.Order {
	return &storefront.Order{
		ID:                  5001,
		Name:                "#1001",
		OrderNumber:         1001,
		Email:               "asha@example.com",
		CreatedAt:           time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		FinancialStatus:     "pending",
		Currency:            "INR",
		TotalPrice:          decimal.RequireFromString("2499.00"),
		PaymentGatewayNames: []string{"razorpay"},
		LineItems: []storefront.LineItem{
			{ID: 11, SKU: "TSHIRT-M", VariantID: 201, Quantity: 2, Price: decimal.RequireFromString("999.50")},
			{ID: 12, SKU: "MUG-STD", VariantID: 202, Quantity: 1, Price: decimal.RequireFromString("500.00")},
		},
		Customer: testCustomer(),
		ShippingAddress: &storefront.Address{
			FirstName: "Asha",
			LastName:  "Nair",
			Address1:  "12 Lodhi Road",
			City:      "New Delhi",
			Province:  "Delhi",
			Country:   "India",
			Zip:       "110003",
			Phone:     "+919876543210",
		},
	}
}

func testRefund() *storefront.Refund {
	return &storefront.Refund{
		ID:        9001,
		OrderID:   5001,
		CreatedAt: time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC),
		Note:      "damaged in transit",
		RefundLineItems: []storefront.RefundLineItem{
			{
				ID:         31,
				LineItemID: 11,
				Quantity:   1,
				Subtotal:   decimal.RequireFromString("999.50"),
				LineItem: &storefront.LineItem{
					ID:        11,
					SKU:       "TSHIRT-M",
					VariantID: 201,
					Price:     decimal.RequireFromString("999.50"),
				},
			},
		},
		Transactions: []storefront.Transaction{
			{ID: 41, Kind: "refund", Status: "success", Amount: decimal.RequireFromString("100.00"), Gateway: "razorpay"},
			{ID: 42, Kind: "refund", Status: "success", Amount: decimal.RequireFromString("50.00"), Gateway: "razorpay"},
		},
	}
}
