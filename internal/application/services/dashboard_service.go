package services

import (
	"context"
	"math"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/analytics"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/shopspring/decimal"
)

// PackageReport is one package's line in the dashboard.
type PackageReport struct {
	PackageID string          `json:"packageId"`
	Name      string          `json:"name"`
	Total     uint            `json:"total"`
	Sold      uint            `json:"sold"`
	Reserved  uint            `json:"reserved"`
	Available uint            `json:"available"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SaleProgress reports the position in the sale window.
type SaleProgress struct {
	HoursElapsed   int `json:"hoursElapsed"`
	HoursRemaining int `json:"hoursRemaining"`
}

// Dashboard is the admin sales report.
type Dashboard struct {
	TotalSold          uint             `json:"totalSold"`
	TotalRevenue       decimal.Decimal  `json:"totalRevenue"`
	JournaledRevenue   *decimal.Decimal `json:"journaledRevenue,omitempty"`
	SalesLastHour      *int             `json:"salesLastHour,omitempty"`
	ConversionRate     float64          `json:"conversionRate"`
	UniqueVisitors     int              `json:"uniqueVisitors"`
	TotalViews         uint64           `json:"totalViews"`
	AbandonmentRate    float64          `json:"abandonmentRate"`
	Replacements       uint64           `json:"replacements"`
	Inventory          []PackageReport  `json:"inventory"`
	ActiveReservations int              `json:"activeReservations"`
	SaleProgress       SaleProgress     `json:"saleProgress"`
	GeneratedAt        time.Time        `json:"generatedAt"`
}

// DashboardService aggregates engine and metrics state for administrators.
type DashboardService struct {
	engine    *inventory.Engine
	metrics   *analytics.VisitorMetrics
	presenter *scarcity.Presenter
	names     map[string]string
	prices    map[string]decimal.Decimal
	journal   analytics.SaleRepository
	logger    *logging.ChanneledLogger
}

// NewDashboardService creates a dashboard service. journal may be nil.
func NewDashboardService(engine *inventory.Engine, metrics *analytics.VisitorMetrics, presenter *scarcity.Presenter, names map[string]string, prices map[string]decimal.Decimal, journal analytics.SaleRepository, logger *logging.ChanneledLogger) *DashboardService {
	return &DashboardService{
		engine:    engine,
		metrics:   metrics,
		presenter: presenter,
		names:     names,
		prices:    prices,
		journal:   journal,
		logger:    logger,
	}
}

// Dashboard sweeps expired holds and builds the report. Packages are read one
// at a time, so the totals are not a cross-package atomic snapshot.
func (s *DashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.engine.Now()
	s.engine.SweepExpired(now)

	pools := s.engine.Pools()
	d := &Dashboard{
		TotalRevenue: decimal.Zero,
		Inventory:    make([]PackageReport, 0, len(pools)),
		GeneratedAt:  now,
	}

	for _, p := range pools {
		price := s.prices[p.PackageID]
		revenue := price.Mul(decimal.NewFromInt(int64(p.Sold)))
		d.TotalSold += p.Sold
		d.TotalRevenue = d.TotalRevenue.Add(revenue)
		d.Inventory = append(d.Inventory, PackageReport{
			PackageID: p.PackageID,
			Name:      s.names[p.PackageID],
			Total:     p.Total,
			Sold:      p.Sold,
			Reserved:  p.Reserved,
			Available: p.Available(),
			UnitPrice: price,
			Revenue:   revenue,
		})
	}

	snap := s.metrics.Snapshot()
	d.UniqueVisitors = snap.UniqueVisitors
	d.TotalViews = snap.TotalViews
	d.Replacements = snap.Replacements
	d.ConversionRate = percent(snap.Conversions, snap.TotalViews)
	d.AbandonmentRate = percent(snap.AbandonedCarts, snap.AbandonedCarts+snap.Conversions)
	d.ActiveReservations = s.engine.ActiveReservations()
	d.SaleProgress = s.progress(now)

	if s.journal != nil {
		journaled, err := s.journal.Revenue(ctx)
		if err != nil {
			s.logger.Database().Error("Failed to read journaled revenue", "error", err)
		} else {
			d.JournaledRevenue = &journaled
		}

		recent, err := s.journal.FindInRange(ctx, now.Add(-time.Hour), now.Add(time.Nanosecond))
		if err != nil {
			s.logger.Database().Error("Failed to read recent journaled sales", "error", err)
		} else {
			n := len(recent)
			d.SalesLastHour = &n
		}
	}

	return d, nil
}

func (s *DashboardService) progress(now time.Time) SaleProgress {
	elapsed := now.Sub(s.presenter.SaleStart())
	if elapsed < 0 {
		elapsed = 0
	}
	hoursElapsed := int(math.Round(elapsed.Hours()))
	remaining := int(math.Round(s.presenter.SaleDuration().Hours())) - hoursElapsed
	if remaining < 0 {
		remaining = 0
	}
	return SaleProgress{HoursElapsed: hoursElapsed, HoursRemaining: remaining}
}

// percent returns num/den*100 rounded to two decimals, or 0 when den is 0.
func percent(num, den uint64) float64 {
	if den == 0 {
		return 0
	}
	return roundTo(float64(num)/float64(den)*100, 2)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
