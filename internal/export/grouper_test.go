package export

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-result/uoden/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func submittedAt(hour int) time.Time {
	return time.Date(2024, 7, 1, hour, 0, 0, 0, time.UTC)
}

func orderWith(id int64, shop string, items ...domain.OrderLineItem) domain.Order {
	return domain.Order{
		ID:          id,
		Purchaser:   domain.Purchaser{ID: id, ShopName: shop},
		SubmittedAt: submittedAt(16),
		Items:       items,
	}
}

func ajiHalf(qty, price int64) domain.OrderLineItem {
	return domain.OrderLineItem{
		ProductName: "鯵",
		Pricing:     domain.PricingByWeight,
		Cut:         domain.CutHalf,
		UnitPrice:   price,
		Quantity:    qty,
	}
}

func TestGroup_SameProductAndCutShareOneGroup(t *testing.T) {
	grouper := NewGrouper(testLogger())

	orders := []domain.Order{
		orderWith(1, "しょうゆ商店", ajiHalf(3, 500)),
		orderWith(2, "たれ商店", ajiHalf(5, 500)),
	}

	groups := grouper.Group(context.Background(), orders, map[string]int64{"鯵": 12})

	require.Equal(t, 1, groups.Len())
	key := domain.ProductGroupKey{ProductName: "鯵", UnitLabel: "半身"}
	assert.Equal(t, []domain.ProductGroupKey{key}, groups.Keys)

	entries := groups.Entries[key]
	require.Len(t, entries, 2)
	assert.Equal(t, domain.GroupedEntry{PurchaserName: "しょうゆ商店", Quantity: 3, UnitPrice: 500, Stock: 12}, entries[0])
	assert.Equal(t, domain.GroupedEntry{PurchaserName: "たれ商店", Quantity: 5, UnitPrice: 500, Stock: 12}, entries[1])
}

func TestGroup_KeyOrderIsFirstAppearance(t *testing.T) {
	grouper := NewGrouper(testLogger())

	saba := domain.OrderLineItem{ProductName: "鯖", Pricing: domain.PricingByWeight, Cut: domain.CutFillet, UnitPrice: 300, Quantity: 1}
	tai := domain.OrderLineItem{ProductName: "鯛", Pricing: domain.PricingByWeight, Cut: domain.CutRound, UnitPrice: 1200, Quantity: 2}

	orders := []domain.Order{
		orderWith(1, "A", saba, ajiHalf(1, 500)),
		orderWith(2, "B", tai, saba),
	}

	groups := grouper.Group(context.Background(), orders, nil)

	require.Equal(t, 3, groups.Len())
	assert.Equal(t, "鯖", groups.Keys[0].ProductName)
	assert.Equal(t, "鯵", groups.Keys[1].ProductName)
	assert.Equal(t, "鯛", groups.Keys[2].ProductName)
	assert.Len(t, groups.Entries[groups.Keys[0]], 2)
}

func TestGroup_SameProductDifferentCutSplits(t *testing.T) {
	grouper := NewGrouper(testLogger())

	fillet := ajiHalf(1, 400)
	fillet.Cut = domain.CutFillet

	orders := []domain.Order{orderWith(1, "A", ajiHalf(2, 500), fillet)}
	groups := grouper.Group(context.Background(), orders, nil)

	require.Equal(t, 2, groups.Len())
	assert.Equal(t, "半身", groups.Keys[0].UnitLabel)
	assert.Equal(t, "フィレ", groups.Keys[1].UnitLabel)
}

func TestGroup_ByUnitItemsHaveBlankUnitLabel(t *testing.T) {
	grouper := NewGrouper(testLogger())

	pack := domain.OrderLineItem{
		ProductName: "アジの開き 3枚セット",
		Pricing:     domain.PricingByUnit,
		SalesFormat: "3枚セット",
		UnitPrice:   800,
		Quantity:    4,
	}

	groups := grouper.Group(context.Background(), []domain.Order{orderWith(1, "A", pack)}, nil)

	require.Equal(t, 1, groups.Len())
	assert.Equal(t, "", groups.Keys[0].UnitLabel)
	assert.Equal(t, "アジの開き 3枚セット", groups.Keys[0].Label())
}

func TestGroup_SkipsMalformedLineItems(t *testing.T) {
	grouper := NewGrouper(testLogger())

	noName := ajiHalf(1, 500)
	noName.ProductName = ""
	zeroQty := ajiHalf(0, 500)
	badPricing := ajiHalf(1, 500)
	badPricing.Pricing = "by_magic"

	orders := []domain.Order{
		orderWith(1, "A", noName, ajiHalf(3, 500)),
		orderWith(2, "B", zeroQty, badPricing),
	}

	groups := grouper.Group(context.Background(), orders, nil)

	// One bad record never blocks the batch: only the valid item survives
	require.Equal(t, 1, groups.Len())
	entries := groups.Entries[groups.Keys[0]]
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].PurchaserName)
}

func TestGroup_DivergentPricesKeepAppendOrder(t *testing.T) {
	grouper := NewGrouper(testLogger())

	orders := []domain.Order{
		orderWith(1, "A", ajiHalf(1, 500)),
		orderWith(2, "B", ajiHalf(1, 650)),
	}

	groups := grouper.Group(context.Background(), orders, nil)

	entries := groups.Entries[groups.Keys[0]]
	require.Len(t, entries, 2)
	assert.Equal(t, int64(500), entries[0].UnitPrice)
	assert.Equal(t, int64(650), entries[1].UnitPrice)
}

func TestGroup_EmptyBatch(t *testing.T) {
	grouper := NewGrouper(testLogger())

	groups := grouper.Group(context.Background(), nil, nil)

	assert.Equal(t, 0, groups.Len())
	assert.Empty(t, groups.Entries)
}
