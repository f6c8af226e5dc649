// Package services provides application-level orchestration services
package services

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/analytics"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
)

// ScarcityElements tells the storefront which widgets to render.
type ScarcityElements struct {
	ShowLowStock       bool `json:"showLowStock"`
	ShowTimer          bool `json:"showTimer"`
	ShowSocialProof    bool `json:"showSocialProof"`
	ShowUrgencyMessage bool `json:"showUrgencyMessage"`
}

// UrgencyData is everything the product page needs for one package.
type UrgencyData struct {
	PackageID        string                    `json:"packageId"`
	Inventory        scarcity.Status           `json:"inventory"`
	TimeUrgency      scarcity.TimeUrgency      `json:"timeUrgency"`
	SocialProof      analytics.SocialProof     `json:"socialProof"`
	UrgencyMessage   string                    `json:"urgencyMessage"`
	ScarcityElements ScarcityElements          `json:"scarcityElements"`
	Recommendations  []scarcity.Recommendation `json:"recommendations"`
}

// UrgencyService composes engine snapshots, presenter output and visitor
// metrics into read-only views.
type UrgencyService struct {
	engine    *inventory.Engine
	presenter *scarcity.Presenter
	metrics   *analytics.VisitorMetrics
	logger    *logging.ChanneledLogger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewUrgencyService creates a new urgency service. rng may be nil.
func NewUrgencyService(engine *inventory.Engine, presenter *scarcity.Presenter, metrics *analytics.VisitorMetrics, logger *logging.ChanneledLogger, rng *rand.Rand) *UrgencyService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &UrgencyService{
		engine:    engine,
		presenter: presenter,
		metrics:   metrics,
		logger:    logger,
		rng:       rng,
	}
}

// GetUrgency sweeps expired holds, counts a view for visitorID and returns
// the urgency view of packageID.
func (s *UrgencyService) GetUrgency(packageID, visitorID string) (*UrgencyData, error) {
	if !s.engine.HasPackage(packageID) {
		return nil, fmt.Errorf("get urgency: %w: %q", inventory.ErrUnknownPackage, packageID)
	}

	now := s.engine.Now()
	if n := s.engine.SweepExpired(now); n > 0 {
		s.logger.Inventory().Debug("Swept expired reservations before urgency read", "count", n)
	}

	statuses := s.statuses()
	current := statuses[packageID]
	proof := s.metrics.TrackView(visitorID, packageID)

	return &UrgencyData{
		PackageID:      packageID,
		Inventory:      current,
		TimeUrgency:    s.presenter.TimeUrgency(now),
		SocialProof:    proof,
		UrgencyMessage: s.headline(),
		ScarcityElements: ScarcityElements{
			ShowLowStock:       current.IsLowStock,
			ShowTimer:          true,
			ShowSocialProof:    true,
			ShowUrgencyMessage: true,
		},
		Recommendations: s.presenter.Recommendations(packageID, statuses),
	}, nil
}

// InventoryStatus returns statuses for ids, or for every package when ids is empty.
func (s *UrgencyService) InventoryStatus(ids ...string) (map[string]scarcity.Status, error) {
	if len(ids) == 0 {
		return s.statuses(), nil
	}
	out := make(map[string]scarcity.Status, len(ids))
	for _, id := range ids {
		pool, err := s.engine.Pool(id)
		if err != nil {
			return nil, fmt.Errorf("inventory status: %w", err)
		}
		out[id] = s.presenter.Status(pool)
	}
	return out, nil
}

// OrderedStatus is a package status tagged with its id, in catalog order.
type OrderedStatus struct {
	PackageID string `json:"packageId"`
	scarcity.Status
}

// CatalogStatus returns every package status in catalog order.
func (s *UrgencyService) CatalogStatus() []OrderedStatus {
	pools := s.engine.Pools()
	out := make([]OrderedStatus, 0, len(pools))
	for _, p := range pools {
		out = append(out, OrderedStatus{PackageID: p.PackageID, Status: s.presenter.Status(p)})
	}
	return out
}

// TrackView records a page view and returns the social-proof snapshot.
func (s *UrgencyService) TrackView(visitorID, packageID string) analytics.SocialProof {
	return s.metrics.TrackView(visitorID, packageID)
}

// SocialProof returns a snapshot without counting a view.
func (s *UrgencyService) SocialProof() analytics.SocialProof {
	snap := s.metrics.Snapshot()
	rate := 0.0
	if snap.TotalViews > 0 {
		rate = roundTo(float64(snap.Conversions)/float64(snap.TotalViews)*100, 1)
	}
	return analytics.SocialProof{
		VisitorsToday:  snap.UniqueVisitors,
		TotalViews:     snap.TotalViews,
		ConversionRate: rate,
		RecentActivity: s.metrics.RecentActivity(),
	}
}

func (s *UrgencyService) statuses() map[string]scarcity.Status {
	pools := s.engine.Pools()
	out := make(map[string]scarcity.Status, len(pools))
	for _, p := range pools {
		out[p.PackageID] = s.presenter.Status(p)
	}
	return out
}

func (s *UrgencyService) headline() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.presenter.Headline(s.rng)
}
