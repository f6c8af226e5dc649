package services

import (
	"context"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/events"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
)

// AlertService notifies operators when a package sells out.
type AlertService struct {
	engine *inventory.Engine
	mailer email.Service
	names  map[string]string
	queue  chan events.Event
	logger *logging.ChanneledLogger
}

// NewAlertService creates an alert service. The engine must be attached with
// SetEngine before Run starts sending.
func NewAlertService(mailer email.Service, names map[string]string, logger *logging.ChanneledLogger) *AlertService {
	return &AlertService{
		mailer: mailer,
		names:  names,
		queue:  make(chan events.Event, 16),
		logger: logger,
	}
}

// SetEngine attaches the engine used to list remaining stock.
func (s *AlertService) SetEngine(engine *inventory.Engine) {
	s.engine = engine
}

// HandleInventoryEvent queues sold-out events.
func (s *AlertService) HandleInventoryEvent(ev events.Event) {
	if ev.Type != events.TypeSoldOut {
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Alert().Error("Alert queue full, dropping sold-out alert", "packageId", ev.PackageID)
	}
}

// Run sends queued alerts until ctx is cancelled.
func (s *AlertService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue:
			s.send(ev)
		}
	}
}

func (s *AlertService) send(ev events.Event) {
	props := templates.SoldOutProps{
		PackageName: s.name(ev.PackageID),
		PackageID:   ev.PackageID,
		Total:       ev.Total,
		SoldAt:      ev.At,
	}
	if s.engine != nil {
		for _, p := range s.engine.Pools() {
			if a := p.Available(); a > 0 {
				props.Remaining = append(props.Remaining, templates.RemainingPackage{Name: s.name(p.PackageID), Available: a})
			}
		}
	}

	if err := s.mailer.SendSoldOutAlert(props); err != nil {
		s.logger.Alert().Error("Failed to send sold-out alert", "packageId", ev.PackageID, "error", err)
		return
	}
	s.logger.Alert().Info("Sold-out alert sent", "packageId", ev.PackageID)
}

func (s *AlertService) name(packageID string) string {
	if n, ok := s.names[packageID]; ok && n != "" {
		return n
	}
	return packageID
}
