package sync

import (
	"github.com/erplink/bridge/internal/domain/erp"
	"github.com/erplink/bridge/internal/domain/storefront"
)

// Storefront status values consulted during resolution.
const (
	fulfillmentFulfilled = "fulfilled"
	fulfillmentPartial   = "partial"
	financialPaid        = "paid"
)

// ResolveStatus maps an order update event to at most one target ERP
// status. Priority is fixed: cancellation outranks fulfillment, which
// outranks partial fulfillment, which outranks payment capture. The second
// return is false when no flag applies, in which case the caller skips the
// ERP call entirely. Pure function.
func ResolveStatus(order *storefront.Order) (erp.OrderStatus, bool) {
	switch {
	case order.CancelledAt != nil:
		return erp.StatusCancelled, true
	case order.FulfillmentStatus == fulfillmentFulfilled:
		return erp.StatusFulfilled, true
	case order.FulfillmentStatus == fulfillmentPartial:
		return erp.StatusPartiallyFulfilled, true
	case order.FinancialStatus == financialPaid:
		return erp.StatusPaid, true
	}
	return "", false
}
