package config

import (
	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/shopspring/decimal"
)

// DefaultCatalog returns the built-in three-package flash sale.
func DefaultCatalog() Catalog {
	return Catalog{
		Packages: []PackageConfig{
			{ID: "emergency_starter", Name: "Emergency Starter", Total: 50, UnitPrice: decimal.NewFromInt(299)},
			{ID: "business_rescue", Name: "Business Rescue", Total: 25, UnitPrice: decimal.NewFromInt(799)},
			{ID: "enterprise_emergency", Name: "Enterprise Emergency", Total: 10, UnitPrice: decimal.NewFromInt(1999)},
		},
		Tiers: []scarcity.Tier{
			{
				From:         "emergency_starter",
				To:           "business_rescue",
				MinAvailable: 5,
				Message:      "Starter running low - Business Rescue still available!",
				Savings:      "Only $500 more for 3x the features",
			},
			{
				From:         "business_rescue",
				To:           "enterprise_emergency",
				MinAvailable: 2,
				Message:      "Business Rescue selling out - Enterprise still available!",
				Savings:      "Unlimited licenses + revenue sharing",
			},
		},
		Headlines: []string{
			"Flash sale pricing is live for a limited time",
			"Sale prices end when the timer runs out",
			"Limited quantities at this price",
		},
		Activities: []string{
			"Business Rescue is the most reserved package today",
			"Several visitors are viewing the Enterprise Emergency package",
			"Emergency Starter packages are being reserved right now",
		},
	}
}
