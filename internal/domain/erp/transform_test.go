package erp

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erplink/bridge/internal/domain/storefront"
)

// ----------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------

func testDefaults() RecordDefaults {
	return RecordDefaults{StoreCode: "WEB01", SourceChannel: "ONLINE"}
}

func testOrder() *storefront.Order {
	return &storefront.Order{
		ID:                  450789469,
		Name:                "#1001",
		OrderNumber:         1001,
		Email:               "orders@example.com",
		CreatedAt:           time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		FinancialStatus:     "paid",
		Currency:            "INR",
		TotalPrice:          decimal.RequireFromString("2547.50"),
		PaymentGatewayNames: []string{"razorpay"},
		LineItems: []storefront.LineItem{
			{
				ID:        1071823172,
				SKU:       "TSHIRT-BLK-M",
				VariantID: 39072856,
				Title:     "Black T-Shirt M",
				Quantity:  2,
				Price:     decimal.RequireFromString("999.00"),
			},
			{
				ID:            1071823173,
				SKU:           "JEANS-BLU-32",
				VariantID:     39072857,
				Title:         "Blue Jeans 32",
				Quantity:      1,
				Price:         decimal.RequireFromString("599.50"),
				TotalDiscount: decimal.RequireFromString("100.00"),
			},
		},
		ShippingLines: []storefront.ShippingLine{
			{Title: "Standard", Price: decimal.RequireFromString("50.00")},
		},
		Customer: &storefront.Customer{
			ID:        207119551,
			FirstName: "Asha",
			LastName:  "Patel",
			Email:     "asha.patel@example.com",
			Phone:     "+919876543210",
		},
		ShippingAddress: &storefront.Address{
			Address1: "12 MG Road",
			City:     "New Delhi",
			Province: "Delhi",
			Country:  "India",
			Zip:      "110001",
			Phone:    "+911123456789",
		},
		Note: "leave at door",
	}
}

func testCustomer() *storefront.Customer {
	return &storefront.Customer{
		ID:        207119551,
		FirstName: "Asha",
		LastName:  "Patel",
		Email:     "asha.patel@example.com",
		Phone:     "+919876543210",
		BirthDate: "1992-07-04",
		DefaultAddress: &storefront.Address{
			Address1: "12 MG Road",
			Address2: "Near Metro",
			City:     "New Delhi",
			Province: "Delhi",
			Country:  "India",
			Zip:      "110001",
			Phone:    "+911123456789",
		},
	}
}

func testRefund() *storefront.Refund {
	return &storefront.Refund{
		ID:        889328106,
		OrderID:   450789469,
		CreatedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		Note:      "damaged in transit",
		RefundLineItems: []storefront.RefundLineItem{
			{
				ID:         1058498311,
				LineItemID: 1071823172,
				Quantity:   1,
				Subtotal:   decimal.RequireFromString("999.00"),
				LineItem: &storefront.LineItem{
					ID:       1071823172,
					SKU:      "TSHIRT-BLK-M",
					Quantity: 2,
					Price:    decimal.RequireFromString("999.00"),
				},
			},
		},
		Transactions: []storefront.Transaction{
			{ID: 1, Kind: "refund", Status: "success", Amount: decimal.RequireFromString("100.00")},
			{ID: 2, Kind: "refund", Status: "success", Amount: decimal.RequireFromString("50.00")},
		},
	}
}

// ----------------------------------------------------------------
// Order Record Tests
// ----------------------------------------------------------------

func TestBuildOrderRecord_MapsCompleteOrder(t *testing.T) {
	record, err := BuildOrderRecord(testOrder(), testDefaults())

	require.NoError(t, err)
	assert.Equal(t, "#1001", record.OrderNumber)
	assert.Equal(t, "15/03/2026", record.OrderDate)
	assert.Equal(t, "WEB01", record.StoreCode)
	assert.Equal(t, "ONLINE", record.SourceChannel)
	assert.Equal(t, "07", record.StateCode)
	assert.Equal(t, PaymentModeOnline, record.PaymentMode)
	assert.Equal(t, "Asha Patel", record.CustomerName)
	assert.Equal(t, "asha.patel@example.com", record.CustomerEmail)
	assert.Equal(t, "+919876543210", record.CustomerMobile)
	assert.Equal(t, "leave at door", record.Remarks)
	assert.True(t, record.TotalValue.Equal(decimal.RequireFromString("2547.50")))

	require.Len(t, record.Items, 2)
	assert.Equal(t, 1, record.Items[0].LineNumber)
	assert.Equal(t, "TSHIRT-BLK-M", record.Items[0].ItemCode)
	assert.Equal(t, 2, record.Items[0].Quantity)
	assert.True(t, record.Items[0].Amount.Equal(decimal.RequireFromString("1998.00")))
	assert.Equal(t, 2, record.Items[1].LineNumber)
	assert.True(t, record.Items[1].Amount.Equal(decimal.RequireFromString("499.50")),
		"amount should be price*qty minus discount, got %s", record.Items[1].Amount)

	require.Len(t, record.Charges, 1)
	assert.Equal(t, "Shipping", record.Charges[0].Name)
	assert.True(t, record.Charges[0].Amount.Equal(decimal.RequireFromString("50.00")))

	require.Len(t, record.Payments, 1)
	assert.Equal(t, PaymentModeOnline, record.Payments[0].Mode)
	assert.True(t, record.Payments[0].Amount.Equal(record.TotalValue))
}

func TestBuildOrderRecord_LineNumbersContiguous(t *testing.T) {
	order := testOrder()
	order.LineItems = nil
	for i := 0; i < 5; i++ {
		order.LineItems = append(order.LineItems, storefront.LineItem{
			SKU:      "SKU-" + string(rune('A'+i)),
			Quantity: 1,
			Price:    decimal.NewFromInt(int64(10 * (i + 1))),
		})
	}

	first, err := BuildOrderRecord(order, testDefaults())
	require.NoError(t, err)
	second, err := BuildOrderRecord(order, testDefaults())
	require.NoError(t, err)

	for i := range first.Items {
		assert.Equal(t, i+1, first.Items[i].LineNumber)
		assert.Equal(t, first.Items[i].LineNumber, second.Items[i].LineNumber,
			"rebuilding the same order must assign the same numbers")
	}
}

func TestBuildOrderRecord_CashOnDelivery(t *testing.T) {
	order := testOrder()
	order.PaymentGatewayNames = []string{"cod"}

	record, err := BuildOrderRecord(order, testDefaults())

	require.NoError(t, err)
	assert.Equal(t, PaymentModeCash, record.PaymentMode)
	require.Len(t, record.Payments, 1)
	assert.Equal(t, PaymentModeCash, record.Payments[0].Mode)
}

func TestBuildOrderRecord_UnmappedProvince(t *testing.T) {
	order := testOrder()
	order.ShippingAddress.Province = "Atlantis"

	record, err := BuildOrderRecord(order, testDefaults())

	require.NoError(t, err)
	assert.Empty(t, record.StateCode)
}

func TestBuildOrderRecord_ZeroShippingOmitsCharge(t *testing.T) {
	order := testOrder()
	order.ShippingLines = []storefront.ShippingLine{{Title: "Free", Price: decimal.Zero}}

	record, err := BuildOrderRecord(order, testDefaults())

	require.NoError(t, err)
	assert.Empty(t, record.Charges)
}

func TestBuildOrderRecord_BillingAddressFallback(t *testing.T) {
	order := testOrder()
	order.ShippingAddress = nil
	order.BillingAddress = &storefront.Address{Province: "Maharashtra"}

	record, err := BuildOrderRecord(order, testDefaults())

	require.NoError(t, err)
	assert.Equal(t, "27", record.StateCode)
}

func TestBuildOrderRecord_ContactFallbacks(t *testing.T) {
	order := testOrder()
	order.Customer = nil

	record, err := BuildOrderRecord(order, testDefaults())

	require.NoError(t, err)
	assert.Empty(t, record.CustomerName)
	assert.Equal(t, "+911123456789", record.CustomerMobile, "mobile should fall back to the destination phone")
	assert.Equal(t, "orders@example.com", record.CustomerEmail, "email should fall back to the order email")
}

func TestBuildOrderRecord_SKUFallsBackToVariantID(t *testing.T) {
	order := testOrder()
	order.LineItems[0].SKU = ""

	record, err := BuildOrderRecord(order, testDefaults())

	require.NoError(t, err)
	assert.Equal(t, "39072856", record.Items[0].ItemCode)
}

func TestBuildOrderRecord_MissingLineItems(t *testing.T) {
	order := testOrder()
	order.LineItems = nil

	record, err := BuildOrderRecord(order, testDefaults())

	assert.Nil(t, record)
	assert.True(t, IsMalformedInput(err))
	assert.EqualError(t, err, "erp: malformed input: missing line_items")
}

func TestBuildOrderRecord_MissingDestination(t *testing.T) {
	order := testOrder()
	order.ShippingAddress = nil
	order.BillingAddress = nil

	record, err := BuildOrderRecord(order, testDefaults())

	assert.Nil(t, record)
	assert.True(t, IsMalformedInput(err))
	assert.EqualError(t, err, "erp: malformed input: missing shipping_address")
}

// ----------------------------------------------------------------
// Customer Record Tests
// ----------------------------------------------------------------

func TestBuildCustomerRecord_MapsCompleteCustomer(t *testing.T) {
	record, err := BuildCustomerRecord(testCustomer())

	require.NoError(t, err)
	assert.Equal(t, "+919876543210", record.CustomerMobile)
	assert.Equal(t, "asha.patel@example.com", record.CustomerEmail)
	assert.Equal(t, "Asha", record.FirstName)
	assert.Equal(t, "Patel", record.LastName)
	assert.Equal(t, "12 MG Road", record.Address1)
	assert.Equal(t, "New Delhi", record.City)
	assert.Equal(t, "Delhi", record.State)
	assert.Equal(t, "07", record.StateCode)
	assert.Equal(t, "110001", record.Pincode)
	assert.Equal(t, "04", record.BirthDay)
	assert.Equal(t, "07", record.BirthMonth)
	assert.Equal(t, "1992", record.BirthYear)
}

func TestBuildCustomerRecord_InvalidBirthDateLeavesAllEmpty(t *testing.T) {
	tests := []struct {
		name      string
		birthDate string
	}{
		{name: "empty", birthDate: ""},
		{name: "impossible month", birthDate: "1992-13-04"},
		{name: "wrong layout", birthDate: "04/07/1992"},
		{name: "free text", birthDate: "july fourth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer := testCustomer()
			customer.BirthDate = tt.birthDate

			record, err := BuildCustomerRecord(customer)

			require.NoError(t, err)
			assert.Empty(t, record.BirthDay)
			assert.Empty(t, record.BirthMonth)
			assert.Empty(t, record.BirthYear)
		})
	}
}

func TestBuildCustomerRecord_AddressPhoneFallback(t *testing.T) {
	customer := testCustomer()
	customer.Phone = ""

	record, err := BuildCustomerRecord(customer)

	require.NoError(t, err)
	assert.Equal(t, "+911123456789", record.CustomerMobile)
}

func TestBuildCustomerRecord_EmailOnlyIsEnough(t *testing.T) {
	customer := testCustomer()
	customer.Phone = ""
	customer.DefaultAddress = nil

	record, err := BuildCustomerRecord(customer)

	require.NoError(t, err)
	assert.Empty(t, record.CustomerMobile)
	assert.Equal(t, "asha.patel@example.com", record.CustomerEmail)
}

func TestBuildCustomerRecord_NoContactIdentifier(t *testing.T) {
	customer := testCustomer()
	customer.Phone = ""
	customer.Email = ""

	record, err := BuildCustomerRecord(customer)

	assert.Nil(t, record)
	assert.True(t, IsMalformedInput(err))
}

// ----------------------------------------------------------------
// Return Record Tests
// ----------------------------------------------------------------

func TestBuildReturnRecord_MapsCompleteRefund(t *testing.T) {
	record, err := BuildReturnRecord(testRefund(), testDefaults())

	require.NoError(t, err)
	assert.Equal(t, "889328106", record.ReturnNumber)
	assert.Equal(t, "450789469", record.OrderNumber)
	assert.Equal(t, "02/04/2026", record.ReturnDate)
	assert.Equal(t, "WEB01", record.StoreCode)
	assert.Equal(t, "damaged in transit", record.Reason)

	require.Len(t, record.Items, 1)
	assert.Equal(t, 1, record.Items[0].LineNumber)
	assert.Equal(t, "TSHIRT-BLK-M", record.Items[0].ItemCode)
	assert.Equal(t, int64(1071823172), record.Items[0].AgainstLineID)
	assert.Equal(t, 1, record.Items[0].Quantity)
	assert.True(t, record.Items[0].Amount.Equal(decimal.RequireFromString("999.00")))
}

func TestBuildReturnRecord_SumsTransactionAmounts(t *testing.T) {
	record, err := BuildReturnRecord(testRefund(), testDefaults())

	require.NoError(t, err)
	assert.True(t, record.TotalValue.Equal(decimal.RequireFromString("150.00")),
		"two transactions of 100 and 50 should total 150, got %s", record.TotalValue)
}

func TestBuildReturnRecord_MissingLineItemDetail(t *testing.T) {
	refund := testRefund()
	refund.RefundLineItems[0].LineItem = nil

	record, err := BuildReturnRecord(refund, testDefaults())

	require.NoError(t, err)
	assert.Equal(t, "1071823172", record.Items[0].ItemCode, "item code should fall back to the line item id")
	assert.True(t, record.Items[0].Rate.IsZero())
}

func TestBuildReturnRecord_MissingRefundLines(t *testing.T) {
	refund := testRefund()
	refund.RefundLineItems = nil

	record, err := BuildReturnRecord(refund, testDefaults())

	assert.Nil(t, record)
	assert.True(t, IsMalformedInput(err))
	assert.EqualError(t, err, "erp: malformed input: missing refund_line_items")
}
