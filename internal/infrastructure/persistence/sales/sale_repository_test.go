package sales

import (
	"context"
	"testing"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/analytics"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/persistence/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *SQLSaleRepository {
	t.Helper()
	logger := logging.NewDiscardLogger()
	db, err := database.NewConnectionWithLogger(":memory:", logger)
	require.NoError(t, err)
	repo, err := NewSQLSaleRepository(context.Background(), db, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, database.DriverLibSQL, database.DriverFor("libsql://sale.turso.io"))
	assert.Equal(t, database.DriverLibSQL, database.DriverFor("https://sale.turso.io"))
	assert.Equal(t, database.DriverSQLite, database.DriverFor("./journal.db"))
	assert.Equal(t, database.DriverSQLite, database.DriverFor(":memory:"))
}

func TestStoreAndQuery(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	sales := []*analytics.SaleRecord{
		{ID: "01A", PackageID: "starter", SessionID: "s1", UnitPrice: decimal.RequireFromString("299.99"), SoldAt: base},
		{ID: "01B", PackageID: "starter", SessionID: "s2", UnitPrice: decimal.RequireFromString("299.99"), SoldAt: base.Add(time.Hour)},
		{ID: "01C", PackageID: "enterprise", SessionID: "s3", UnitPrice: decimal.NewFromInt(1999), SoldAt: base.Add(2 * time.Hour)},
	}
	for _, s := range sales {
		require.NoError(t, repo.Store(ctx, s))
	}

	revenue, err := repo.Revenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2598.98", revenue.String())

	found, err := repo.FindInRange(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "01A", found[0].ID)
	assert.True(t, found[0].SoldAt.Equal(base))
	assert.True(t, found[1].UnitPrice.Equal(decimal.RequireFromString("299.99")))

	assert.Error(t, repo.Store(ctx, sales[0]), "duplicate id")
}

func TestEmptyRevenue(t *testing.T) {
	revenue, err := newRepo(t).Revenue(context.Background())
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
}
