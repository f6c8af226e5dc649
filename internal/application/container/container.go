// Package container provides dependency injection for all singleton services
package container

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/application/services"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/analytics"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/cleanup"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/persistence/sales"
	"github.com/AtRiskMedia/scarcity-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	Config *config.Config

	// Domain
	Engine    *inventory.Engine
	Presenter *scarcity.Presenter
	Metrics   *analytics.VisitorMetrics

	// Application Services
	UrgencyService     *services.UrgencyService
	ReservationService *services.ReservationService
	DashboardService   *services.DashboardService
	AuthService        *services.AuthService
	AlertService       *services.AlertService
	JournalService     *services.JournalService // nil when JOURNAL_URL is unset

	// Infrastructure Dependencies
	Broadcaster    *messaging.InventoryBroadcaster
	SweepWorker    *cleanup.Worker
	Logger         *logging.ChanneledLogger
	LogBroadcaster *logging.LogBroadcaster
	PerfTracker    *performance.Tracker

	journal analytics.SaleRepository
	wg      sync.WaitGroup
}

// NewContainer creates and wires all singleton services. ctx bounds journal
// schema creation only.
func NewContainer(ctx context.Context, cfg *config.Config, logger *logging.ChanneledLogger, logBroadcaster *logging.LogBroadcaster) (*Container, error) {
	c := &Container{
		Config:         cfg,
		Logger:         logger,
		LogBroadcaster: logBroadcaster,
		PerfTracker:    performance.NewTracker(nil),
	}
	c.PerfTracker.OnSlow(func(s performance.Sample) {
		logger.Perf().Warn("Slow operation", "operation", s.Operation, "duration", s.Duration)
	})

	catalog := cfg.Catalog
	saleStart := cfg.SaleStart
	if saleStart.IsZero() {
		saleStart = time.Now().UTC()
	}

	c.Metrics = analytics.NewVisitorMetrics(analytics.MetricsConfig{
		StartTime:    saleStart,
		Activities:   catalog.Activities,
		PackageNames: catalog.Names(),
	})
	c.Presenter = scarcity.NewPresenter(cfg.Thresholds(), catalog.Tiers, saleStart, cfg.SaleDuration, catalog.Headlines)

	// Listeners are created before the engine so they can be registered at
	// construction; the broadcaster reads through c once the services exist.
	c.Broadcaster = messaging.NewInventoryBroadcaster(c.broadcastFrames, cfg.BroadcastInterval, logger.WebSocket())
	mailer := email.NewService(cfg.ResendAPIKey, cfg.AlertEmailFrom, cfg.AlertEmailTo, logger.Alert())
	c.AlertService = services.NewAlertService(mailer, catalog.Names(), logger)

	opts := []inventory.Option{
		inventory.WithRecorder(c.Metrics),
		inventory.WithLogger(logger.Inventory()),
		inventory.WithListener(c.Broadcaster),
		inventory.WithListener(c.AlertService),
	}

	if cfg.JournalURL != "" {
		db, err := database.NewConnectionWithLogger(cfg.JournalURL, logger)
		if err != nil {
			return nil, err
		}
		repo, err := sales.NewSQLSaleRepository(ctx, db, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize sale journal: %w", err)
		}
		c.journal = repo
		c.JournalService = services.NewJournalService(repo, catalog.Prices(), logger)
		opts = append(opts, inventory.WithListener(c.JournalService))
	}

	engine, err := inventory.NewEngine(inventory.Config{
		Packages:   catalog.InventoryPackages(),
		DefaultTTL: cfg.ReservationTTL,
	}, opts...)
	if err != nil {
		if c.journal != nil {
			c.journal.Close()
		}
		return nil, err
	}
	c.Engine = engine
	c.AlertService.SetEngine(engine)

	c.UrgencyService = services.NewUrgencyService(engine, c.Presenter, c.Metrics, logger, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	c.ReservationService = services.NewReservationService(engine, c.Presenter, logger, c.PerfTracker)
	c.DashboardService = services.NewDashboardService(engine, c.Metrics, c.Presenter, catalog.Names(), catalog.Prices(), c.journal, logger)
	c.AuthService = services.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminTokenTTL, logger, c.PerfTracker)
	c.SweepWorker = cleanup.NewWorker(engine, cleanup.NewConfig(cfg), logger.WithOperation(logging.ChannelInventory, "sweep"))

	return c, nil
}

// Start launches the background workers. They stop when ctx is cancelled;
// Wait blocks until they have.
func (c *Container) Start(ctx context.Context) {
	run := func(fn func(context.Context)) {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			fn(ctx)
		}()
	}

	run(c.Broadcaster.Run)
	run(c.SweepWorker.Start)
	run(c.AlertService.Run)
	if c.JournalService != nil {
		run(c.JournalService.Run)
	}
	if c.LogBroadcaster != nil {
		run(c.LogBroadcaster.Run)
	}
}

// Wait blocks until every worker started by Start has returned.
func (c *Container) Wait() {
	c.wg.Wait()
}

// Close releases the sale journal and log files.
func (c *Container) Close() error {
	var firstErr error
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.Logger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Container) broadcastFrames() []messaging.Message {
	if c.UrgencyService == nil {
		return nil
	}
	now := time.Now().UTC()
	proof := c.UrgencyService.SocialProof()
	return []messaging.Message{
		{Type: messaging.TypeInventoryUpdate, Data: c.UrgencyService.CatalogStatus(), Timestamp: now},
		{Type: messaging.TypeSocialProofUpdate, Data: map[string]any{
			"recentActivity": proof.RecentActivity,
			"visitorsToday":  proof.VisitorsToday,
		}, Timestamp: now},
	}
}
