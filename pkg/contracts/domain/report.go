package domain

import (
	"fmt"
)

// ProductGroupKey buckets line items into report columns.
// UnitLabel is empty for unit-priced items (see OrderLineItem.UnitLabel).
type ProductGroupKey struct {
	ProductName string `json:"product_name"`
	UnitLabel   string `json:"unit_label"`
}

// Label renders the key the way it appears to operators, e.g. 鯵(半身)
func (k ProductGroupKey) Label() string {
	if k.UnitLabel == "" {
		return k.ProductName
	}
	return fmt.Sprintf("%s(%s)", k.ProductName, k.UnitLabel)
}

// GroupedEntry is one line item's contribution to a product group
type GroupedEntry struct {
	PurchaserName string `json:"purchaser_name"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	Stock         int64  `json:"stock"`
}

// PivotCell is one (shop, quantity) pair within a data row.
// Filled distinguishes a real entry from rectangularity padding.
type PivotCell struct {
	PurchaserName string `json:"purchaser_name"`
	Quantity      int64  `json:"quantity"`
	Filled        bool   `json:"filled"`
}

// PivotColumn is one product group in the report. UnitPrice and Stock are
// representative values taken from the group's first entry; later entries
// never overwrite them.
type PivotColumn struct {
	Key       ProductGroupKey `json:"key"`
	UnitPrice int64           `json:"unit_price"`
	Stock     int64           `json:"stock"`
	Cells     []PivotCell     `json:"cells"`
}

// HeaderLabel renders the composite column header carrying the product
// name, its unit price and the registered remaining stock.
func (c PivotColumn) HeaderLabel() string {
	return fmt.Sprintf("%s (金額: %d円, 登録してある残り在庫数: %d匹)", c.Key.Label(), c.UnitPrice, c.Stock)
}

// SubHeaderLabels is the fixed per-column block beneath each product
// header. 重さ and 備考 stay blank in data rows for manual fill-in.
var SubHeaderLabels = [4]string{"会社名", "発注量", "重さ", "備考"}

// PivotTable is the rectangular header/sub-header/data-row structure
// produced from ragged product groups. Every column holds exactly
// RowCount cells after padding.
type PivotTable struct {
	Columns  []PivotColumn `json:"columns"`
	RowCount int           `json:"row_count"`
}
