package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is one completed sale with the unit price in force when it
// happened.
type SaleRecord struct {
	ID        string          `json:"id"`
	PackageID string          `json:"packageId"`
	SessionID string          `json:"sessionId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	SoldAt    time.Time       `json:"soldAt"`
}

// SaleRepository defines the contract for the durable per-sale journal.
type SaleRepository interface {
	// Store appends a sale record.
	Store(ctx context.Context, sale *SaleRecord) error

	// FindInRange returns sales with start <= SoldAt < end, oldest first.
	FindInRange(ctx context.Context, start, end time.Time) ([]*SaleRecord, error)

	// Revenue sums UnitPrice over every journaled sale.
	Revenue(ctx context.Context) (decimal.Decimal, error)

	// Close releases the underlying connection.
	Close() error
}
