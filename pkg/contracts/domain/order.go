package domain

import (
	"time"
)

// PricingType classifies how a line item is priced
type PricingType string

const (
	// PricingByWeight prices the item per weight; the unit of sale is a fish cut
	PricingByWeight PricingType = "by_weight"
	// PricingByUnit prices the item per piece; the unit of sale is the free-text sales format
	PricingByUnit PricingType = "by_unit"
)

// Valid reports whether the pricing classification is a known value
func (p PricingType) Valid() bool {
	return p == PricingByWeight || p == PricingByUnit
}

// FishCut is the unit-of-sale enumeration for weight-priced items
type FishCut string

const (
	CutRound  FishCut = "round"  // 丸 (whole fish)
	CutGutted FishCut = "gutted" // 腹抜き
	CutHalf   FishCut = "half"   // 半身
	CutFillet FishCut = "fillet" // フィレ
	CutBlock  FishCut = "block"  // 柵
)

var cutLabels = map[FishCut]string{
	CutRound:  "丸",
	CutGutted: "腹抜き",
	CutHalf:   "半身",
	CutFillet: "フィレ",
	CutBlock:  "柵",
}

// Label returns the human-readable Japanese label for the cut.
// Unknown codes are rendered verbatim so a new cut never hides data.
func (c FishCut) Label() string {
	if label, ok := cutLabels[c]; ok {
		return label
	}
	return string(c)
}

// Purchaser represents the ordering shop
type Purchaser struct {
	ID          int64  `json:"id"`
	ShopName    string `json:"shop_name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// OrderLineItem represents one purchased product instance within an order
type OrderLineItem struct {
	ID          int64       `json:"id"`
	ProductName string      `json:"product_name"`
	Pricing     PricingType `json:"pricing"`
	Cut         FishCut     `json:"cut,omitempty"`
	SalesFormat string      `json:"sales_format,omitempty"`
	UnitPrice   int64       `json:"unit_price"` // yen
	Quantity    int64       `json:"quantity"`
	IsRequest   bool        `json:"is_request"`
}

// UnitLabel returns the unit-of-sale label used in the report group key.
// Weight-priced items use the cut label; unit-priced items use an empty
// label because their product name is already the sales format verbatim.
func (li OrderLineItem) UnitLabel() string {
	if li.Pricing == PricingByWeight {
		return li.Cut.Label()
	}
	return ""
}

// Order represents one purchase transaction
type Order struct {
	ID          int64           `json:"id"`
	PurchaserID int64           `json:"purchaser_id"`
	Purchaser   Purchaser       `json:"purchaser"`
	Memo        string          `json:"memo,omitempty"`
	Canceled    bool            `json:"canceled"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Items       []OrderLineItem `json:"items"`
}

// StockLevel is the current remaining stock for a product, attached to
// grouped entries at export time rather than stored on line items.
type StockLevel struct {
	ProductName string `json:"product_name"`
	Remaining   int64  `json:"remaining"`
}
