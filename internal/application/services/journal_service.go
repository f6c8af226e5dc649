package services

import (
	"context"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/analytics"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/events"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/security"
	"github.com/shopspring/decimal"
)

const journalQueueSize = 1024

// JournalService turns completed-sale events into sale journal rows. Events
// are queued by the engine's listener call and written by Run, so no
// database I/O ever happens on the reservation path.
type JournalService struct {
	repo   analytics.SaleRepository
	prices map[string]decimal.Decimal
	queue  chan *analytics.SaleRecord
	logger *logging.ChanneledLogger
}

// NewJournalService creates a journal writer for repo.
func NewJournalService(repo analytics.SaleRepository, prices map[string]decimal.Decimal, logger *logging.ChanneledLogger) *JournalService {
	return &JournalService{
		repo:   repo,
		prices: prices,
		queue:  make(chan *analytics.SaleRecord, journalQueueSize),
		logger: logger,
	}
}

// HandleInventoryEvent queues a record for every completed sale.
func (s *JournalService) HandleInventoryEvent(ev events.Event) {
	if ev.Type != events.TypeCompleted {
		return
	}
	rec := &analytics.SaleRecord{
		ID:        security.GenerateULID(),
		PackageID: ev.PackageID,
		SessionID: ev.SessionID,
		UnitPrice: s.prices[ev.PackageID],
		SoldAt:    ev.At,
	}
	select {
	case s.queue <- rec:
	default:
		s.logger.Database().Error("Sale journal queue full, dropping record",
			"packageId", rec.PackageID,
			"sessionId", logging.SanitizeSessionID(rec.SessionID))
	}
}

// Run writes queued records until ctx is cancelled, then flushes what is left.
func (s *JournalService) Run(ctx context.Context) {
	for {
		select {
		case rec := <-s.queue:
			s.store(ctx, rec)
		case <-ctx.Done():
			s.flush()
			return
		}
	}
}

func (s *JournalService) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case rec := <-s.queue:
			s.store(ctx, rec)
		default:
			return
		}
	}
}

func (s *JournalService) store(ctx context.Context, rec *analytics.SaleRecord) {
	if err := s.repo.Store(ctx, rec); err != nil {
		s.logger.Database().Error("Failed to journal sale", "packageId", rec.PackageID, "error", err)
	}
}

