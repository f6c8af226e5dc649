package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/performance"
)

// ErrMissingField is returned when a required request field is empty.
var ErrMissingField = errors.New("missing required field")

// ReserveResult is returned by a successful Reserve.
type ReserveResult struct {
	ReservationID    string    `json:"reservationId"`
	PackageID        string    `json:"packageId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
	Replaced         bool      `json:"replaced"`
}

// CompleteResult is returned by a successful Complete.
type CompleteResult struct {
	PackageID          string          `json:"packageId"`
	NewInventoryStatus scarcity.Status `json:"newInventoryStatus"`
}

// ReservationService wraps the engine's mutating operations with logging and
// timing.
type ReservationService struct {
	engine      *inventory.Engine
	presenter   *scarcity.Presenter
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewReservationService creates a new reservation service
func NewReservationService(engine *inventory.Engine, presenter *scarcity.Presenter, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ReservationService {
	return &ReservationService{
		engine:      engine,
		presenter:   presenter,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Reserve places a hold with the engine's default TTL.
func (s *ReservationService) Reserve(packageID, sessionID string) (*ReserveResult, error) {
	if packageID == "" {
		return nil, fmt.Errorf("reserve: %w: packageId", ErrMissingField)
	}
	if sessionID == "" {
		return nil, fmt.Errorf("reserve: %w: sessionId", ErrMissingField)
	}

	marker := s.perfTracker.StartOperation("engine_reserve", packageID)
	defer marker.Complete()

	r, err := s.engine.Reserve(packageID, sessionID, 0)
	if err != nil {
		marker.SetError(err)
		s.logger.Reservation().Info("Reservation refused",
			"packageId", packageID,
			"sessionId", logging.SanitizeSessionID(sessionID),
			"error", err)
		return nil, err
	}

	s.logger.Reservation().Info("Reservation placed",
		"packageId", packageID,
		"sessionId", logging.SanitizeSessionID(sessionID),
		"reservationId", r.ID,
		"replaced", r.Replaced,
		"expiresAt", r.ExpiresAt)

	return &ReserveResult{
		ReservationID:    r.ID,
		PackageID:        r.PackageID,
		ExpiresAt:        r.ExpiresAt,
		RemainingSeconds: int(math.Round(r.Remaining(s.engine.Now()).Seconds())),
		Replaced:         r.Replaced,
	}, nil
}

// Complete converts the session's hold into a sale.
func (s *ReservationService) Complete(sessionID string) (*CompleteResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("complete: %w: sessionId", ErrMissingField)
	}

	marker := s.perfTracker.StartOperation("engine_complete", sessionID)
	defer marker.Complete()

	packageID, err := s.engine.Complete(sessionID)
	if err != nil {
		marker.SetError(err)
		s.logger.Reservation().Info("Completion refused",
			"sessionId", logging.SanitizeSessionID(sessionID),
			"error", err)
		return nil, err
	}

	pool, err := s.engine.Pool(packageID)
	if err != nil {
		return nil, err
	}

	s.logger.Reservation().Info("Purchase completed",
		"packageId", packageID,
		"sessionId", logging.SanitizeSessionID(sessionID),
		"sold", pool.Sold,
		"total", pool.Total)

	return &CompleteResult{
		PackageID:          packageID,
		NewInventoryStatus: s.presenter.Status(pool),
	}, nil
}

// Cancel releases the session's hold, if any.
func (s *ReservationService) Cancel(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("cancel: %w: sessionId", ErrMissingField)
	}
	s.engine.Cancel(sessionID)
	s.logger.Reservation().Info("Reservation cancelled", "sessionId", logging.SanitizeSessionID(sessionID))
	return nil
}
