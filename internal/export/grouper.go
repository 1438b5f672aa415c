package export

import (
	"context"
	"log/slog"

	apperrors "github.com/g-result/uoden/internal/errors"
	"github.com/g-result/uoden/pkg/contracts/domain"
)

// Groups holds the grouped line items of one export batch. Keys preserves
// the first-appearance order across the flattened batch scan; that order
// is the column order of the final table.
type Groups struct {
	Keys    []domain.ProductGroupKey
	Entries map[domain.ProductGroupKey][]domain.GroupedEntry
}

// Len returns the number of distinct product groups
func (g *Groups) Len() int {
	return len(g.Keys)
}

// Grouper flattens order line items and buckets them by product group key
type Grouper struct {
	logger *slog.Logger
}

// NewGrouper creates a new line item grouper
func NewGrouper(logger *slog.Logger) *Grouper {
	return &Grouper{
		logger: logger.With(slog.String("component", "grouper")),
	}
}

// Group performs a single linear pass over every line item of every order.
// Malformed line items are skipped with a warning so one bad record never
// blocks the whole report. stock carries the current remaining stock per
// product name, attached transiently to each entry.
func (g *Grouper) Group(ctx context.Context, orders []domain.Order, stock map[string]int64) *Groups {
	groups := &Groups{
		Entries: make(map[domain.ProductGroupKey][]domain.GroupedEntry),
	}

	for _, order := range orders {
		for _, item := range order.Items {
			if err := validateLineItem(item); err != nil {
				g.logger.WarnContext(ctx, "skipping malformed line item",
					slog.Int64("order_id", order.ID),
					slog.Int64("line_item_id", item.ID),
					slog.String("error", err.Error()))
				continue
			}

			key := domain.ProductGroupKey{
				ProductName: item.ProductName,
				UnitLabel:   item.UnitLabel(),
			}

			entries, seen := groups.Entries[key]
			if !seen {
				groups.Keys = append(groups.Keys, key)
			} else if len(entries) > 0 && entries[0].UnitPrice != item.UnitPrice {
				// First-wins rule: the group keeps its first-seen price.
				// Logged so operators can tell whether divergent prices
				// within one window actually occur.
				g.logger.WarnContext(ctx, "divergent unit price within product group",
					slog.String("product", key.ProductName),
					slog.String("unit_label", key.UnitLabel),
					slog.Int64("group_price", entries[0].UnitPrice),
					slog.Int64("item_price", item.UnitPrice),
					slog.Int64("order_id", order.ID))
			}

			groups.Entries[key] = append(entries, domain.GroupedEntry{
				PurchaserName: order.Purchaser.ShopName,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				Stock:         stock[item.ProductName],
			})
		}
	}

	return groups
}

func validateLineItem(item domain.OrderLineItem) error {
	if item.ProductName == "" {
		return apperrors.NewMalformedOrderError("line item has no product name", nil)
	}
	if item.Quantity <= 0 {
		return apperrors.NewMalformedOrderError("line item quantity must be positive", nil).
			WithContext("quantity", item.Quantity)
	}
	if !item.Pricing.Valid() {
		return apperrors.NewMalformedOrderError("line item has unknown pricing classification", nil).
			WithContext("pricing", string(item.Pricing))
	}
	return nil
}
