// Package store is the PostgreSQL order store. The export pipeline only
// reads from it: window-bounded orders with their line items, and the
// current stock levels used to annotate the report.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/g-result/uoden/internal/config"
	apperrors "github.com/g-result/uoden/internal/errors"
	"github.com/g-result/uoden/pkg/contracts/domain"
)

// Store wraps the pgx connection pool
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to the database and verifies the connection
func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid database url", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create connection pool", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, apperrors.NewStorageError("database unreachable", err)
	}

	return &Store{
		pool:   pool,
		logger: logger.With(slog.String("component", "order_store")),
	}, nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports database reachability for health checks
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const fetchWindowQuery = `
SELECT o.id, o.memo, o.submitted_at,
       p.id, p.shop_name, p.contact_name, p.email,
       li.id, li.product_name, li.pricing, li.cut, li.sales_format,
       li.unit_price, li.quantity, li.is_request
FROM orders o
JOIN purchasers p ON p.id = o.purchaser_id
JOIN order_line_items li ON li.order_id = o.id
WHERE o.submitted_at >= $1
  AND o.submitted_at < $2
  AND NOT o.canceled
ORDER BY o.submitted_at, o.id, li.id`

// FetchWindow returns the non-canceled orders submitted in the half-open
// interval [start, end), each with its purchaser and line items. An empty
// window yields an empty slice, not an error.
func (s *Store) FetchWindow(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, fetchWindowQuery, start, end)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError("order window query failed", err).
			WithContext("window_start", start.Format(time.RFC3339)).
			WithContext("window_end", end.Format(time.RFC3339))
	}
	defer rows.Close()

	var orders []domain.Order
	index := make(map[int64]int)

	for rows.Next() {
		var (
			order        domain.Order
			item         domain.OrderLineItem
			pricing, cut string
		)
		err := rows.Scan(
			&order.ID, &order.Memo, &order.SubmittedAt,
			&order.Purchaser.ID, &order.Purchaser.ShopName, &order.Purchaser.ContactName, &order.Purchaser.Email,
			&item.ID, &item.ProductName, &pricing, &cut, &item.SalesFormat,
			&item.UnitPrice, &item.Quantity, &item.IsRequest,
		)
		if err != nil {
			return nil, apperrors.NewSourceUnavailableError("order row scan failed", err)
		}
		item.Pricing = domain.PricingType(pricing)
		item.Cut = domain.FishCut(cut)
		order.PurchaserID = order.Purchaser.ID

		if i, ok := index[order.ID]; ok {
			orders[i].Items = append(orders[i].Items, item)
			continue
		}
		order.Items = []domain.OrderLineItem{item}
		index[order.ID] = len(orders)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewSourceUnavailableError("order window read failed", err).
			WithContext("window_start", start.Format(time.RFC3339)).
			WithContext("window_end", end.Format(time.RFC3339))
	}

	s.logger.DebugContext(ctx, "fetched order window",
		slog.Time("start", start),
		slog.Time("end", end),
		slog.Int("orders", len(orders)))
	return orders, nil
}

const stockLevelsQuery = `SELECT name, remaining_stock FROM products`

// StockLevels returns the current remaining stock keyed by product name
func (s *Store) StockLevels(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, stockLevelsQuery)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError("stock query failed", err)
	}
	defer rows.Close()

	stock := make(map[string]int64)
	for rows.Next() {
		var level domain.StockLevel
		if err := rows.Scan(&level.ProductName, &level.Remaining); err != nil {
			return nil, apperrors.NewSourceUnavailableError("stock row scan failed", err)
		}
		stock[level.ProductName] = level.Remaining
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewSourceUnavailableError("stock read failed", err)
	}
	return stock, nil
}

// String renders pool stats for startup logging
func (s *Store) String() string {
	stat := s.pool.Stat()
	return fmt.Sprintf("pool(total=%d idle=%d)", stat.TotalConns(), stat.IdleConns())
}
