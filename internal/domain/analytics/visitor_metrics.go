// Package analytics tracks visitor engagement and sale conversions for the
// running sale.
package analytics

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultRecentSaleWindow is how long a real sale is preferred over the
// canned activity lines.
const DefaultRecentSaleWindow = time.Hour

// SocialProof is the engagement snapshot returned to visitors.
type SocialProof struct {
	VisitorsToday  int     `json:"visitorsToday"`
	TotalViews     uint64  `json:"totalViews"`
	ConversionRate float64 `json:"conversionRate"`
	RecentActivity string  `json:"recentActivity"`
}

// Snapshot is an immutable copy of the counters.
type Snapshot struct {
	StartTime      time.Time `json:"startTime"`
	TotalViews     uint64    `json:"totalViews"`
	UniqueVisitors int       `json:"uniqueVisitors"`
	Conversions    uint64    `json:"conversions"`
	AbandonedCarts uint64    `json:"abandonedCarts"`
	Replacements   uint64    `json:"replacements"`
}

// MetricsConfig configures a VisitorMetrics.
type MetricsConfig struct {
	StartTime        time.Time
	Activities       []string
	PackageNames     map[string]string
	RecentSaleWindow time.Duration
	Rand             *rand.Rand
	Clock            func() time.Time
}

type saleActivity struct {
	packageID string
	at        time.Time
}

// VisitorMetrics is the process-wide engagement tracker. All fields are
// guarded by mu, which is a leaf lock: the reservation engine calls into it
// while holding a package lock.
type VisitorMetrics struct {
	mu sync.Mutex

	startTime    time.Time
	totalViews   uint64
	visitors     map[string]struct{}
	conversions  uint64
	abandoned    uint64
	replacements uint64
	lastSale     *saleActivity

	activities   []string
	names        map[string]string
	recentWindow time.Duration
	rng          *rand.Rand
	now          func() time.Time
}

// NewVisitorMetrics creates a tracker starting at cfg.StartTime.
func NewVisitorMetrics(cfg MetricsConfig) *VisitorMetrics {
	m := &VisitorMetrics{
		startTime:    cfg.StartTime,
		visitors:     make(map[string]struct{}),
		activities:   cfg.Activities,
		names:        cfg.PackageNames,
		recentWindow: cfg.RecentSaleWindow,
		rng:          cfg.Rand,
		now:          cfg.Clock,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.startTime.IsZero() {
		m.startTime = m.now()
	}
	if m.recentWindow <= 0 {
		m.recentWindow = DefaultRecentSaleWindow
	}
	if m.rng == nil {
		seed := uint64(m.now().UnixNano())
		m.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return m
}

// TrackView records a page view and returns the social-proof snapshot.
// packageID is accepted for parity with the gateway and may be empty.
func (m *VisitorMetrics) TrackView(visitorID, packageID string) SocialProof {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalViews++
	if visitorID != "" {
		m.visitors[visitorID] = struct{}{}
	}
	return SocialProof{
		VisitorsToday:  len(m.visitors),
		TotalViews:     m.totalViews,
		ConversionRate: m.conversionRateLocked(),
		RecentActivity: m.recentActivityLocked(),
	}
}

// RecentActivity returns one activity line without counting a view.
func (m *VisitorMetrics) RecentActivity() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recentActivityLocked()
}

// UniqueVisitors returns the number of distinct visitors seen.
func (m *VisitorMetrics) UniqueVisitors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

// RecordConversion implements inventory.Recorder.
func (m *VisitorMetrics) RecordConversion(packageID string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions++
	m.lastSale = &saleActivity{packageID: packageID, at: at}
}

// RecordAbandonment implements inventory.Recorder.
func (m *VisitorMetrics) RecordAbandonment(count int) {
	if count <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned += uint64(count)
}

// RecordReplacement implements inventory.Recorder.
func (m *VisitorMetrics) RecordReplacement() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replacements++
}

// Snapshot copies the counters.
func (m *VisitorMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		StartTime:      m.startTime,
		TotalViews:     m.totalViews,
		UniqueVisitors: len(m.visitors),
		Conversions:    m.conversions,
		AbandonedCarts: m.abandoned,
		Replacements:   m.replacements,
	}
}

// conversionRateLocked returns conversions/views as a percentage with one decimal.
func (m *VisitorMetrics) conversionRateLocked() float64 {
	if m.totalViews == 0 {
		return 0
	}
	rate := float64(m.conversions) / float64(m.totalViews) * 100
	return math.Round(rate*10) / 10
}

func (m *VisitorMetrics) recentActivityLocked() string {
	if m.lastSale != nil && m.now().Sub(m.lastSale.at) <= m.recentWindow {
		name := m.names[m.lastSale.packageID]
		if name == "" {
			name = m.lastSale.packageID
		}
		return fmt.Sprintf("Someone just purchased %s", name)
	}
	if len(m.activities) == 0 {
		return ""
	}
	return m.activities[m.rng.IntN(len(m.activities))]
}
