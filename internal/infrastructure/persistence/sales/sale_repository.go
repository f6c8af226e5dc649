// Package sales provides the SQL-backed sale journal.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/analytics"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/persistence/database"
	"github.com/shopspring/decimal"
)

// SQLSaleRepository appends completed sales to the sales table. Timestamps are
// stored as UTC unix nanoseconds and prices as decimal strings.
type SQLSaleRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSaleRepository creates the repository and ensures the schema exists.
func NewSQLSaleRepository(ctx context.Context, db *database.DB, logger *logging.ChanneledLogger) (*SQLSaleRepository, error) {
	if err := db.CreateSchema(ctx); err != nil {
		return nil, err
	}
	return &SQLSaleRepository{db: db, logger: logger}, nil
}

// Store saves one sale record.
func (r *SQLSaleRepository) Store(ctx context.Context, sale *analytics.SaleRecord) error {
	const query = `INSERT INTO sales (id, package_id, session_id, unit_price, sold_at) VALUES (?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		sale.ID,
		sale.PackageID,
		sale.SessionID,
		sale.UnitPrice.String(),
		sale.SoldAt.UTC().UnixNano(),
	)
	if err != nil {
		r.logger.Database().Error("Sale insert failed",
			"error", err.Error(),
			"saleId", sale.ID,
			"packageId", sale.PackageID)
		return fmt.Errorf("failed to store sale: %w", err)
	}

	duration := time.Since(start)
	r.logger.Database().Debug("Sale insert completed",
		"saleId", sale.ID,
		"packageId", sale.PackageID,
		"duration", duration)
	database.CheckAndLogSlowQuery(r.logger, query, duration)
	return nil
}

// FindInRange returns sales with start <= sold_at < end, oldest first.
func (r *SQLSaleRepository) FindInRange(ctx context.Context, start, end time.Time) ([]*analytics.SaleRecord, error) {
	const query = `SELECT id, package_id, session_id, unit_price, sold_at FROM sales
		WHERE sold_at >= ? AND sold_at < ? ORDER BY sold_at, id`

	rows, err := r.db.QueryContext(ctx, query, start.UTC().UnixNano(), end.UTC().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var out []*analytics.SaleRecord
	for rows.Next() {
		var (
			rec    analytics.SaleRecord
			price  string
			soldAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.PackageID, &rec.SessionID, &price, &soldAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if rec.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sale %s has invalid price %q: %w", rec.ID, price, err)
		}
		rec.SoldAt = time.Unix(0, soldAt).UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Revenue sums unit prices in decimal arithmetic.
func (r *SQLSaleRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT unit_price FROM sales`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var price string
		if err := rows.Scan(&price); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan price: %w", err)
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid price %q: %w", price, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// Close closes the underlying connection.
func (r *SQLSaleRepository) Close() error {
	return r.db.Close()
}
