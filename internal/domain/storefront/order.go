// Package storefront defines the inbound event shapes delivered by the
// commerce platform's webhooks. The types mirror the platform's JSON
// payloads; all interpretation (code lookups, line numbering, date
// formatting) happens in the erp package's transformers.
package storefront

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the order payload carried by order create/update/cancel events.
type Order struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	OrderNumber         int64           `json:"order_number"`
	Email               string          `json:"email"`
	CreatedAt           time.Time       `json:"created_at"`
	CancelledAt         *time.Time      `json:"cancelled_at"`
	FinancialStatus     string          `json:"financial_status"`
	FulfillmentStatus   string          `json:"fulfillment_status"`
	Currency            string          `json:"currency"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	TotalDiscounts      decimal.Decimal `json:"total_discounts"`
	TotalTax            decimal.Decimal `json:"total_tax"`
	PaymentGatewayNames []string        `json:"payment_gateway_names"`
	LineItems           []LineItem      `json:"line_items"`
	ShippingLines       []ShippingLine  `json:"shipping_lines"`
	Customer            *Customer       `json:"customer"`
	ShippingAddress     *Address        `json:"shipping_address"`
	BillingAddress      *Address        `json:"billing_address"`
	Note                string          `json:"note"`
}

// LineItem is one product entry within an order.
type LineItem struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	VariantID     int64           `json:"variant_id"`
	ProductID     int64           `json:"product_id"`
	Title         string          `json:"title"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TaxLines      []TaxLine       `json:"tax_lines"`
}

// ShippingLine is one shipping charge entry on an order.
type ShippingLine struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// TaxLine is one tax entry attached to a line item.
type TaxLine struct {
	Title string          `json:"title"`
	Rate  decimal.Decimal `json:"rate"`
	Price decimal.Decimal `json:"price"`
}

// Address is a shipping or billing address attached to orders and customers.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

// PrimaryGateway returns the first payment gateway name on the order, or an
// empty string when the platform sent none.
func (o *Order) PrimaryGateway() string {
	if len(o.PaymentGatewayNames) == 0 {
		return ""
	}
	return o.PaymentGatewayNames[0]
}

// DestinationAddress picks the address the order ships to, falling back to
// the billing address when no shipping address was captured.
func (o *Order) DestinationAddress() *Address {
	if o.ShippingAddress != nil {
		return o.ShippingAddress
	}
	return o.BillingAddress
}
