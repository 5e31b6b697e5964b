package erpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erplink/bridge/internal/domain/erp"
	"github.com/shopspring/decimal"
)

// OneOrMany decodes a JSON value that may be a single object or an array of
// objects into a uniform slice. The ERP's inventory endpoint uses both
// shapes depending on how many stock locations it reports; the ambiguity is
// resolved here at the wire boundary and never propagated further.
type OneOrMany[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*o = OneOrMany[T]{one}
	return nil
}

// inventoryPayload is the Data shape of a GetInventory response.
type inventoryPayload struct {
	Inventory OneOrMany[locationPayload] `json:"Inventory"`
}

// locationPayload is one stock location on the wire.
type locationPayload struct {
	Location string          `json:"Location"`
	Items    []inventoryItem `json:"Items"`
}

// inventoryItem is one stock row on the wire.
type inventoryItem struct {
	ProductCode  string          `json:"ProductCode"`
	EanCode      string          `json:"EanCode"`
	ItemCode     string          `json:"ItemCode"`
	Stock        decimal.Decimal `json:"Stock"`
	SalesPrice   decimal.Decimal `json:"SalesPrice"`
	MRP          decimal.Decimal `json:"MRP"`
	TaxRate      decimal.Decimal `json:"TaxRate"`
	LastModified string          `json:"LastModified"`
}

// erpTimeLayouts are the timestamp formats observed on inventory rows.
var erpTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseInventorySnapshot normalizes a GetInventory Data payload into the
// uniform snapshot shape. A single-object Inventory field becomes a
// one-location snapshot; a location with an absent Items field gets an
// empty item slice, never an error.
func ParseInventorySnapshot(data json.RawMessage, fetchedAt time.Time) (*erp.InventorySnapshot, error) {
	snapshot := &erp.InventorySnapshot{
		Locations: []erp.LocationInventory{},
		FetchedAt: fetchedAt,
	}
	if len(data) == 0 {
		return snapshot, nil
	}

	var payload inventoryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("erpclient: failed to parse inventory payload: %w", err)
	}

	for _, loc := range payload.Inventory {
		location := erp.LocationInventory{
			Location: loc.Location,
			Items:    make([]erp.InventoryItem, 0, len(loc.Items)),
		}
		for _, item := range loc.Items {
			location.Items = append(location.Items, erp.InventoryItem{
				ProductCode:  item.ProductCode,
				EanCode:      item.EanCode,
				ItemCode:     item.ItemCode,
				Stock:        item.Stock,
				SalesPrice:   item.SalesPrice,
				MRP:          item.MRP,
				TaxRate:      item.TaxRate,
				LastModified: parseERPTime(item.LastModified),
			})
		}
		snapshot.Locations = append(snapshot.Locations, location)
	}
	return snapshot, nil
}

// parseERPTime tries the known ERP timestamp layouts, returning the zero
// time when none match. Timestamps are informational; a bad one must not
// fail the snapshot.
func parseERPTime(value string) time.Time {
	for _, layout := range erpTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
