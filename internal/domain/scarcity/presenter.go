// Package scarcity derives urgency levels, messages and upgrade
// recommendations from inventory snapshots. Everything here is a pure
// function of its inputs.
package scarcity

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
)

// Level is a coarse urgency bucket.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Thresholds maps remaining availability to urgency levels.
type Thresholds struct {
	LowStock     uint `yaml:"lowStock" json:"lowStock"`
	VeryLowStock uint `yaml:"veryLowStock" json:"veryLowStock"`
	LastChance   uint `yaml:"lastChance" json:"lastChance"`
}

// DefaultThresholds returns 5 / 2 / 1.
func DefaultThresholds() Thresholds {
	return Thresholds{LowStock: 5, VeryLowStock: 2, LastChance: 1}
}

// Tier links a package to the next tier offered when it runs low.
type Tier struct {
	From         string `yaml:"from" json:"from"`
	To           string `yaml:"to" json:"to"`
	MinAvailable uint   `yaml:"minAvailable" json:"minAvailable"`
	Message      string `yaml:"message" json:"message"`
	Savings      string `yaml:"savings" json:"savings"`
}

// Status is the read-only view of one package's inventory.
type Status struct {
	Available    uint   `json:"available"`
	Total        uint   `json:"total"`
	Sold         uint   `json:"sold"`
	PercentSold  int    `json:"percentSold"`
	UrgencyLevel Level  `json:"urgencyLevel"`
	Message      string `json:"message"`
	IsLowStock   bool   `json:"isLowStock"`
}

// TimeUrgency is the wall-clock axis of urgency, independent of stock.
type TimeUrgency struct {
	Level    Level  `json:"level"`
	Message  string `json:"message"`
	TimeLeft string `json:"timeLeft"`
}

// Recommendation suggests moving a buyer to another package.
type Recommendation struct {
	Type          string `json:"type"`
	TargetPackage string `json:"targetPackage"`
	Message       string `json:"message"`
	Savings       string `json:"savings,omitempty"`
}

// Presenter holds the static configuration needed to render urgency.
type Presenter struct {
	thresholds   Thresholds
	tiers        []Tier
	saleStart    time.Time
	saleDuration time.Duration
	headlines    []string
}

// NewPresenter builds a presenter. saleDuration <= 0 defaults to 48h.
func NewPresenter(thresholds Thresholds, tiers []Tier, saleStart time.Time, saleDuration time.Duration, headlines []string) *Presenter {
	if saleDuration <= 0 {
		saleDuration = 48 * time.Hour
	}
	return &Presenter{
		thresholds:   thresholds,
		tiers:        tiers,
		saleStart:    saleStart,
		saleDuration: saleDuration,
		headlines:    headlines,
	}
}

// SaleStart returns when the sale window opened.
func (p *Presenter) SaleStart() time.Time { return p.saleStart }

// SaleDuration returns the length of the sale window.
func (p *Presenter) SaleDuration() time.Duration { return p.saleDuration }

// Level buckets availability: <=LastChance critical, <=VeryLowStock high,
// <=LowStock medium, otherwise normal.
func (p *Presenter) Level(available uint) Level {
	switch {
	case available <= p.thresholds.LastChance:
		return LevelCritical
	case available <= p.thresholds.VeryLowStock:
		return LevelHigh
	case available <= p.thresholds.LowStock:
		return LevelMedium
	default:
		return LevelNormal
	}
}

// Status renders a pool snapshot.
func (p *Presenter) Status(pool inventory.Pool) Status {
	available := pool.Available()
	level := p.Level(available)
	return Status{
		Available:    available,
		Total:        pool.Total,
		Sold:         pool.Sold,
		PercentSold:  PercentSold(pool.Sold, pool.Total),
		UrgencyLevel: level,
		Message:      stockMessage(level, available),
		IsLowStock:   available <= p.thresholds.LowStock,
	}
}

// PercentSold returns round(sold/total*100), or 0 for an empty total.
func PercentSold(sold, total uint) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(sold) / float64(total) * 100))
}

func stockMessage(level Level, available uint) string {
	switch level {
	case LevelCritical:
		return fmt.Sprintf("LAST %d REMAINING!", available)
	case LevelHigh:
		return fmt.Sprintf("Only %d left at this price!", available)
	case LevelMedium:
		return fmt.Sprintf("%d remaining - selling fast!", available)
	default:
		return ""
	}
}

// TimeUrgency buckets the time elapsed since the sale opened into
// 0-6h, 6-24h, 24-42h and 42h+.
func (p *Presenter) TimeUrgency(now time.Time) TimeUrgency {
	elapsed := now.Sub(p.saleStart)
	if elapsed < 0 {
		elapsed = 0
	}
	left := p.saleDuration - elapsed
	if left < 0 {
		left = 0
	}
	hoursLeft := fmt.Sprintf("%d hours", int(math.Round(left.Hours())))

	switch {
	case elapsed < 6*time.Hour:
		return TimeUrgency{
			Level:    LevelHigh,
			Message:  "Flash sale just started - best prices available now!",
			TimeLeft: fmt.Sprintf("%d hours", int(math.Round(p.saleDuration.Hours()))),
		}
	case elapsed < 24*time.Hour:
		return TimeUrgency{
			Level:    LevelMedium,
			Message:  "Less than 24 hours left at these prices!",
			TimeLeft: hoursLeft,
		}
	case elapsed < 42*time.Hour:
		return TimeUrgency{
			Level:    LevelHigh,
			Message:  "Final hours - prices go back to normal soon!",
			TimeLeft: hoursLeft,
		}
	default:
		return TimeUrgency{
			Level:    LevelCritical,
			Message:  "LAST CHANCE - sale ends soon!",
			TimeLeft: "Minutes remaining",
		}
	}
}

// Recommendations returns upgrade suggestions for packageID. A tier fires
// when the current package is at high or critical urgency and the target
// still has more than MinAvailable units.
func (p *Presenter) Recommendations(packageID string, statuses map[string]Status) []Recommendation {
	recs := []Recommendation{}
	current, ok := statuses[packageID]
	if !ok {
		return recs
	}
	if current.UrgencyLevel != LevelHigh && current.UrgencyLevel != LevelCritical {
		return recs
	}
	for _, tier := range p.tiers {
		if tier.From != packageID {
			continue
		}
		target, ok := statuses[tier.To]
		if !ok || target.Available <= tier.MinAvailable {
			continue
		}
		recs = append(recs, Recommendation{
			Type:          "upgrade",
			TargetPackage: tier.To,
			Message:       tier.Message,
			Savings:       tier.Savings,
		})
	}
	return recs
}

// Headline picks one of the configured sale headlines. r must not be shared
// between goroutines without external locking.
func (p *Presenter) Headline(r *rand.Rand) string {
	if len(p.headlines) == 0 {
		return ""
	}
	if r == nil {
		return p.headlines[rand.IntN(len(p.headlines))]
	}
	return p.headlines[r.IntN(len(p.headlines))]
}
