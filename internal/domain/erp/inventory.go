package erp

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is one stock entry in the normalized inventory snapshot.
type InventoryItem struct {
	ProductCode  string          `json:"product_code"`
	EanCode      string          `json:"ean_code"`
	ItemCode     string          `json:"item_code"`
	Stock        decimal.Decimal `json:"stock"`
	SalesPrice   decimal.Decimal `json:"sales_price"`
	MRP          decimal.Decimal `json:"mrp"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	LastModified time.Time       `json:"last_modified"`
}

// LocationInventory groups the items held at one stock location.
type LocationInventory struct {
	Location string          `json:"location"`
	Items    []InventoryItem `json:"items"`
}

// InventorySnapshot is the uniform result of an inventory pull, regardless
// of how many locations the ERP reported or in which wire shape.
type InventorySnapshot struct {
	Locations []LocationInventory `json:"locations"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// TotalItems counts the items across all locations in the snapshot.
func (s *InventorySnapshot) TotalItems() int {
	n := 0
	for _, loc := range s.Locations {
		n += len(loc.Items)
	}
	return n
}
