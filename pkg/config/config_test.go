package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, 45*time.Second, cfg.SweepInterval)
	assert.Equal(t, 30*time.Second, cfg.BroadcastInterval)
	assert.Equal(t, 48*time.Hour, cfg.SaleDuration)
	assert.True(t, cfg.SaleStart.IsZero())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.AdminEnabled())

	th := cfg.Thresholds()
	assert.Equal(t, uint(5), th.LowStock)
	assert.Equal(t, uint(2), th.VeryLowStock)
	assert.Equal(t, uint(1), th.LastChance)

	require.Len(t, cfg.Catalog.Packages, 3)
	starter, ok := cfg.Catalog.Package("emergency_starter")
	require.True(t, ok)
	assert.Equal(t, uint(50), starter.Total)
	assert.True(t, starter.UnitPrice.Equal(decimal.NewFromInt(299)))
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("RESERVATION_TTL", "5m")
	t.Setenv("URGENCY_LOW_STOCK", "10")
	t.Setenv("SALE_START", "2025-03-01T00:00:00Z")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, uint(10), cfg.LowStock)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), cfg.SaleStart.UTC())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RESERVATION_TTL", "not-a-duration"},
		{"RESERVATION_TTL", "0s"},
		{"SWEEP_INTERVAL", "-1s"},
		{"URGENCY_LAST_CHANCE", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	yamlDoc := `
packages:
  - id: basic
    name: Basic
    total: 3
    unitPrice: "19.99"
  - id: pro
    total: 1
    unitPrice: 49
tiers:
  - from: basic
    to: pro
    minAvailable: 0
    message: Go pro
headlines: ["hurry"]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))
	t.Setenv("CATALOG_FILE", path)

	cfg, err := Parse()
	require.NoError(t, err)

	require.Len(t, cfg.Catalog.Packages, 2)
	assert.Equal(t, "19.99", cfg.Catalog.Prices()["basic"].String())
	assert.Equal(t, "pro", cfg.Catalog.Names()["pro"])
	assert.Equal(t, []string{"hurry"}, cfg.Catalog.Headlines)
	require.Len(t, cfg.Catalog.InventoryPackages(), 2)
	assert.Equal(t, uint(1), cfg.Catalog.InventoryPackages()[1].Total)
}

func TestCatalogValidate(t *testing.T) {
	base := func() Catalog { return DefaultCatalog() }

	c := base()
	require.NoError(t, c.Validate())

	c = base()
	c.Packages[1].ID = c.Packages[0].ID
	assert.ErrorContains(t, c.Validate(), "duplicate")

	c = base()
	c.Packages[0].Total = 0
	assert.ErrorContains(t, c.Validate(), "positive total")

	c = base()
	c.Packages[0].UnitPrice = decimal.NewFromInt(-1)
	assert.ErrorContains(t, c.Validate(), "negative")

	c = base()
	c.Tiers[0].To = "missing"
	assert.ErrorContains(t, c.Validate(), "unknown package")

	assert.Error(t, (&Catalog{}).Validate())
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
