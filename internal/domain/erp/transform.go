package erp

import (
	"strconv"
	"time"

	"github.com/erplink/bridge/internal/domain/storefront"
	"github.com/shopspring/decimal"
)

// dateLayout is the calendar date format the ERP expects on record headers.
const dateLayout = "02/01/2006"

// shippingChargeName is the aggregated charge row name for shipping lines.
const shippingChargeName = "Shipping"

// birthDateLayout is the storefront's birth date format.
const birthDateLayout = "2006-01-02"

// BuildOrderRecord maps a storefront order into a CreateSalesOrder record.
// Line numbers are assigned contiguously from 1 in source order, shipping
// lines collapse into a single positive charge row, and gateway/province
// lookups fall back to their defaults rather than failing. It fails only
// when the order has no line items or no destination address.
func BuildOrderRecord(order *storefront.Order, defaults RecordDefaults) (*OrderRecord, error) {
	if len(order.LineItems) == 0 {
		return nil, NewMalformedInputError("line_items")
	}
	dest := order.DestinationAddress()
	if dest == nil {
		return nil, NewMalformedInputError("shipping_address")
	}

	record := &OrderRecord{
		OrderNumber:   OrderReference(order),
		OrderDate:     order.CreatedAt.Format(dateLayout),
		StoreCode:     defaults.StoreCode,
		SourceChannel: defaults.SourceChannel,
		StateCode:     StateCodeFor(dest.Province),
		PaymentMode:   PaymentModeFor(order.PrimaryGateway()),
		TotalValue:    order.TotalPrice,
		Remarks:       order.Note,
		Items:         orderLines(order.LineItems),
	}

	if order.Customer != nil {
		record.CustomerName = order.Customer.DisplayName()
		record.CustomerEmail = order.Customer.Email
		record.CustomerMobile = order.Customer.Phone
	}
	if record.CustomerMobile == "" {
		record.CustomerMobile = dest.Phone
	}
	if record.CustomerEmail == "" {
		record.CustomerEmail = order.Email
	}

	if shipping := shippingTotal(order.ShippingLines); shipping.IsPositive() {
		record.Charges = append(record.Charges, Charge{Name: shippingChargeName, Amount: shipping})
	}
	record.Payments = append(record.Payments, Payment{Mode: record.PaymentMode, Amount: order.TotalPrice})

	return record, nil
}

// BuildCustomerRecord maps a storefront customer into an AddCustomer or
// ModifyCustomer record. The birth date splits into day/month/year only
// when it parses as a valid calendar date; otherwise all three stay empty.
// It fails only when the customer carries no contact identifier at all.
func BuildCustomerRecord(customer *storefront.Customer) (*CustomerRecord, error) {
	if customer.Phone == "" && customer.Email == "" {
		return nil, NewMalformedInputError("phone")
	}

	record := &CustomerRecord{
		CustomerMobile: customer.Phone,
		CustomerEmail:  customer.Email,
		FirstName:      customer.FirstName,
		LastName:       customer.LastName,
	}

	if addr := customer.DefaultAddress; addr != nil {
		record.Address1 = addr.Address1
		record.Address2 = addr.Address2
		record.City = addr.City
		record.State = addr.Province
		record.StateCode = StateCodeFor(addr.Province)
		record.Pincode = addr.Zip
		record.Country = addr.Country
		if record.CustomerMobile == "" {
			record.CustomerMobile = addr.Phone
		}
	}

	if born, err := time.Parse(birthDateLayout, customer.BirthDate); err == nil {
		record.BirthDay = born.Format("02")
		record.BirthMonth = born.Format("01")
		record.BirthYear = born.Format("2006")
	}

	return record, nil
}

// BuildReturnRecord maps a storefront refund into a CreateReturnOrder
// record. Each line carries the original order line's identifier as its
// back-reference, and the return's total value is the sum of the refund's
// transaction amounts. It fails only when the refund has no line items.
func BuildReturnRecord(refund *storefront.Refund, defaults RecordDefaults) (*ReturnRecord, error) {
	if len(refund.RefundLineItems) == 0 {
		return nil, NewMalformedInputError("refund_line_items")
	}

	record := &ReturnRecord{
		ReturnNumber: strconv.FormatInt(refund.ID, 10),
		OrderNumber:  strconv.FormatInt(refund.OrderID, 10),
		ReturnDate:   refund.CreatedAt.Format(dateLayout),
		StoreCode:    defaults.StoreCode,
		Reason:       refund.Note,
		TotalValue:   refund.RefundedAmount(),
	}

	for i, line := range refund.RefundLineItems {
		row := ReturnLine{
			LineNumber:    i + 1,
			AgainstLineID: line.LineItemID,
			Quantity:      line.Quantity,
			Amount:        line.Subtotal,
		}
		if item := line.LineItem; item != nil {
			row.ItemCode = lineItemCode(*item)
			row.Rate = item.Price
		} else {
			row.ItemCode = strconv.FormatInt(line.LineItemID, 10)
		}
		record.Items = append(record.Items, row)
	}

	return record, nil
}

// orderLines numbers and maps order line items, in source order.
func orderLines(items []storefront.LineItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for i, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		lines = append(lines, OrderLine{
			LineNumber: i + 1,
			ItemCode:   lineItemCode(item),
			Quantity:   item.Quantity,
			Rate:       item.Price,
			Discount:   item.TotalDiscount,
			Amount:     item.Price.Mul(qty).Sub(item.TotalDiscount),
		})
	}
	return lines
}

// lineItemCode picks the ERP item code: the SKU when present, otherwise the
// variant identifier.
func lineItemCode(item storefront.LineItem) string {
	if item.SKU != "" {
		return item.SKU
	}
	return strconv.FormatInt(item.VariantID, 10)
}

// shippingTotal sums the order's shipping line prices.
func shippingTotal(lines []storefront.ShippingLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price)
	}
	return total
}

// OrderReference picks the storefront's human-facing order reference,
// falling back to the numeric identifiers. Status updates and detail
// lookups must use the same reference the order record carried.
func OrderReference(order *storefront.Order) string {
	if order.Name != "" {
		return order.Name
	}
	if order.OrderNumber != 0 {
		return strconv.FormatInt(order.OrderNumber, 10)
	}
	return strconv.FormatInt(order.ID, 10)
}
