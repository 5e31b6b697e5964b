// Package erp defines the record shapes accepted by the ERP's data endpoint
// and the pure transformers that build them from storefront payloads. Wire
// field names follow the ERP's PascalCase convention.
package erp

import "github.com/shopspring/decimal"

// OrderRecord is the CreateSalesOrder payload.
type OrderRecord struct {
	OrderNumber    string          `json:"OrderNumber"`
	OrderDate      string          `json:"OrderDate"`
	StoreCode      string          `json:"StoreCode"`
	SourceChannel  string          `json:"SourceChannel"`
	CustomerMobile string          `json:"CustomerMobile"`
	CustomerEmail  string          `json:"CustomerEmail"`
	CustomerName   string          `json:"CustomerName"`
	StateCode      string          `json:"StateCode"`
	PaymentMode    PaymentMode     `json:"PaymentMode"`
	TotalValue     decimal.Decimal `json:"TotalOrderValue"`
	Remarks        string          `json:"Remarks,omitempty"`
	Items          []OrderLine     `json:"Items"`
	Charges        []Charge        `json:"Charges,omitempty"`
	Payments       []Payment       `json:"Payments,omitempty"`
}

// OrderLine is one item row on an order record. LineNumber is contiguous
// and 1-based, assigned in transformation order.
type OrderLine struct {
	LineNumber int             `json:"LineNumber"`
	ItemCode   string          `json:"ItemCode"`
	Quantity   int             `json:"Quantity"`
	Rate       decimal.Decimal `json:"Rate"`
	Discount   decimal.Decimal `json:"Discount"`
	Amount     decimal.Decimal `json:"Amount"`
}

// Charge is an order-level charge row, currently only aggregated shipping.
type Charge struct {
	Name   string          `json:"ChargeName"`
	Amount decimal.Decimal `json:"ChargeAmount"`
}

// Payment is an order-level payment row.
type Payment struct {
	Mode   PaymentMode     `json:"Mode"`
	Amount decimal.Decimal `json:"Amount"`
}

// CustomerRecord is the AddCustomer/ModifyCustomer payload. The three birth
// fields are either all filled or all empty.
type CustomerRecord struct {
	CustomerMobile string `json:"CustomerMobile"`
	CustomerEmail  string `json:"CustomerEmail"`
	FirstName      string `json:"FirstName"`
	LastName       string `json:"LastName"`
	Address1       string `json:"Address1,omitempty"`
	Address2       string `json:"Address2,omitempty"`
	City           string `json:"City,omitempty"`
	State          string `json:"State,omitempty"`
	StateCode      string `json:"StateCode,omitempty"`
	Pincode        string `json:"Pincode,omitempty"`
	Country        string `json:"Country,omitempty"`
	BirthDay       string `json:"BirthDay"`
	BirthMonth     string `json:"BirthMonth"`
	BirthYear      string `json:"BirthYear"`
}

// ReturnRecord is the CreateReturnOrder payload.
type ReturnRecord struct {
	ReturnNumber string          `json:"ReturnOrderNumber"`
	OrderNumber  string          `json:"OrderNumber"`
	ReturnDate   string          `json:"ReturnDate"`
	StoreCode    string          `json:"StoreCode"`
	Reason       string          `json:"Reason,omitempty"`
	TotalValue   decimal.Decimal `json:"TotalReturnOrderValue"`
	Items        []ReturnLine    `json:"Items"`
}

// ReturnLine is one item row on a return record. AgainstLineID carries the
// original order line's identifier so the ERP can match the return against
// the sale.
type ReturnLine struct {
	LineNumber    int             `json:"LineNumber"`
	ItemCode      string          `json:"ItemCode"`
	AgainstLineID int64           `json:"AgainstLineId"`
	Quantity      int             `json:"Quantity"`
	Rate          decimal.Decimal `json:"Rate"`
	Amount        decimal.Decimal `json:"Amount"`
}

// StatusUpdate is the SetOrderStatus payload.
type StatusUpdate struct {
	OrderNumber string      `json:"OrderNumber"`
	Status      OrderStatus `json:"Status"`
}

// OrderQuery is the GetOrderDetail payload.
type OrderQuery struct {
	OrderNumber string `json:"OrderNumber"`
}

// InventoryQuery is the GetInventory payload. The empty query asks for the
// full stock list.
type InventoryQuery struct{}

// OrderStatus is a target order status on the ERP side.
type OrderStatus string

const (
	StatusCancelled          OrderStatus = "CANCELLED"
	StatusFulfilled          OrderStatus = "FULFILLED"
	StatusPartiallyFulfilled OrderStatus = "PARTIALLY_FULFILLED"
	StatusPaid               OrderStatus = "PAID"
)

// IsValid checks if the status is one of the ERP's recognized targets.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusCancelled, StatusFulfilled, StatusPartiallyFulfilled, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s OrderStatus) String() string {
	return string(s)
}

// RecordDefaults carries the configured constants stamped onto every
// outbound record.
type RecordDefaults struct {
	StoreCode     string
	SourceChannel string
}
