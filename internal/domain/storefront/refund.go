package storefront

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund is the payload carried by refund create events.
type Refund struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"order_id"`
	CreatedAt       time.Time        `json:"created_at"`
	Note            string           `json:"note"`
	RefundLineItems []RefundLineItem `json:"refund_line_items"`
	Transactions    []Transaction    `json:"transactions"`
}

// RefundLineItem references one returned order line with its quantity and
// value. LineItem carries the original order line's product identity so the
// return record can be built without refetching the order.
type RefundLineItem struct {
	ID         int64           `json:"id"`
	LineItemID int64           `json:"line_item_id"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalTax   decimal.Decimal `json:"total_tax"`
	LineItem   *LineItem       `json:"line_item"`
}

// Transaction is one money movement attached to a refund.
type Transaction struct {
	ID      int64           `json:"id"`
	Kind    string          `json:"kind"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"`
	Gateway string          `json:"gateway"`
}

// RefundedAmount sums the refund's transaction amounts.
func (r *Refund) RefundedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range r.Transactions {
		total = total.Add(tx.Amount)
	}
	return total
}
