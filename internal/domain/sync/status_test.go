package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/erplink/bridge/internal/domain/erp"
	"github.com/erplink/bridge/internal/domain/storefront"
)

func TestResolveStatus(t *testing.T) {
	cancelled := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		order      *storefront.Order
		wantStatus erp.OrderStatus
		wantOK     bool
	}{
		{
			name:       "cancelled order",
			order:      &storefront.Order{CancelledAt: &cancelled},
			wantStatus: erp.StatusCancelled,
			wantOK:     true,
		},
		{
			name:       "cancellation outranks fulfillment",
			order:      &storefront.Order{CancelledAt: &cancelled, FulfillmentStatus: "fulfilled", FinancialStatus: "paid"},
			wantStatus: erp.StatusCancelled,
			wantOK:     true,
		},
		{
			name:       "fulfilled order",
			order:      &storefront.Order{FulfillmentStatus: "fulfilled"},
			wantStatus: erp.StatusFulfilled,
			wantOK:     true,
		},
		{
			name:       "fulfillment outranks payment",
			order:      &storefront.Order{FulfillmentStatus: "fulfilled", FinancialStatus: "paid"},
			wantStatus: erp.StatusFulfilled,
			wantOK:     true,
		},
		{
			name:       "partially fulfilled order",
			order:      &storefront.Order{FulfillmentStatus: "partial", FinancialStatus: "paid"},
			wantStatus: erp.StatusPartiallyFulfilled,
			wantOK:     true,
		},
		{
			name:       "paid order",
			order:      &storefront.Order{FinancialStatus: "paid"},
			wantStatus: erp.StatusPaid,
			wantOK:     true,
		},
		{
			name:   "pending order maps to nothing",
			order:  &storefront.Order{FinancialStatus: "pending"},
			wantOK: false,
		},
		{
			name:   "empty statuses map to nothing",
			order:  &storefront.Order{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := ResolveStatus(tt.order)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
