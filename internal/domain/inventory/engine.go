package inventory

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/events"
	"github.com/oklog/ulid/v2"
)

// DefaultReservationTTL is used when neither the caller nor the config names one.
const DefaultReservationTTL = 15 * time.Minute

// lookupAttempts bounds how often Complete/Cancel chase a session whose
// binding moved to another package between lookup and lock.
const lookupAttempts = 3

// Package is the static definition of one sellable package.
type Package struct {
	ID    string
	Total uint
}

// Config holds the immutable inputs of an Engine.
type Config struct {
	Packages   []Package
	DefaultTTL time.Duration
}

// Recorder receives counter updates on state transitions. It is called from
// inside a package's critical section, so implementations must only take
// their own leaf lock and return quickly.
type Recorder interface {
	RecordConversion(packageID string, at time.Time)
	RecordAbandonment(count int)
	RecordReplacement()
}

type noopRecorder struct{}

func (noopRecorder) RecordConversion(string, time.Time) {}
func (noopRecorder) RecordAbandonment(int)              {}
func (noopRecorder) RecordReplacement()                 {}

// Option customises an Engine at construction.
type Option func(*Engine)

// WithClock replaces time.Now as the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRecorder routes transition counters to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithListener subscribes l to transition events.
func WithListener(l events.Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

// Engine is the only component allowed to mutate pool counters or to create
// and terminate reservations. Each package is its own mutual-exclusion
// domain; no operation holds two package locks at once.
type Engine struct {
	store     *ReservationStore
	ttl       time.Duration
	now       func() time.Time
	recorder  Recorder
	logger    *slog.Logger
	listeners []events.Listener
}

// NewEngine builds an engine with empty pools for every configured package.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if len(cfg.Packages) == 0 {
		return nil, fmt.Errorf("inventory: no packages configured")
	}

	pools := make([]Pool, 0, len(cfg.Packages))
	seen := make(map[string]bool, len(cfg.Packages))
	for _, pkg := range cfg.Packages {
		if pkg.ID == "" {
			return nil, fmt.Errorf("inventory: package id must not be empty")
		}
		if seen[pkg.ID] {
			return nil, fmt.Errorf("inventory: duplicate package %q", pkg.ID)
		}
		if pkg.Total == 0 {
			return nil, fmt.Errorf("inventory: package %q must have a positive total", pkg.ID)
		}
		seen[pkg.ID] = true
		pools = append(pools, Pool{PackageID: pkg.ID, Total: pkg.Total})
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}

	e := &Engine{
		store:    newReservationStore(pools),
		ttl:      ttl,
		now:      time.Now,
		recorder: noopRecorder{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// DefaultTTL returns the hold duration applied when Reserve gets ttl <= 0.
func (e *Engine) DefaultTTL() time.Duration { return e.ttl }

// Now returns the engine's current time.
func (e *Engine) Now() time.Time { return e.now() }

// Reserve takes a hold on one unit of packageID for sessionID.
//
// Expired holds are swept first. A session that already holds a unit of the
// same package gets a fresh hold without consuming more capacity; a session
// holding another package has that hold released once the new one is in
// place. Fails with ErrOutOfStock, leaving all state untouched, when nothing
// is available.
func (e *Engine) Reserve(packageID, sessionID string, ttl time.Duration) (Reservation, error) {
	p, ok := e.store.partition(packageID)
	if !ok {
		return Reservation{}, unknownPackage(packageID)
	}
	if ttl <= 0 {
		ttl = e.ttl
	}

	now := e.now()
	e.SweepExpired(now)

	r := Reservation{
		ID:        ulid.Make().String(),
		PackageID: packageID,
		SessionID: sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	p.mu.Lock()
	_, held := p.holds[sessionID]
	if !held && p.pool.Available() == 0 {
		p.mu.Unlock()
		e.logger.Debug("Reservation rejected", "packageId", packageID, "reason", "out_of_stock")
		return Reservation{}, fmt.Errorf("%w: %q", ErrOutOfStock, packageID)
	}
	if !held {
		p.pool.Reserved++
	}
	prev := e.store.bind(sessionID, packageID)
	r.Replaced = held || (prev != "" && prev != packageID)
	p.holds[sessionID] = r
	if r.Replaced {
		e.recorder.RecordReplacement()
	}
	evType := events.TypeReserved
	if r.Replaced {
		evType = events.TypeReplaced
	}
	ev := e.event(evType, p.pool, r.SessionID, r.ID, now)
	p.mu.Unlock()

	if prev != "" && prev != packageID {
		e.releasePrior(sessionID, prev)
	}

	e.publish(ev)
	return r, nil
}

// releasePrior drops the hold a session kept on another package after it
// re-reserved elsewhere. If the session has meanwhile been bound back to
// that package, the hold is current and is left alone.
func (e *Engine) releasePrior(sessionID, packageID string) {
	p, ok := e.store.partition(packageID)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.store.boundTo(sessionID, packageID) {
		return
	}
	if _, held := p.holds[sessionID]; !held {
		return
	}
	delete(p.holds, sessionID)
	p.pool.Reserved--
}

// Complete converts the session's live hold into a sale and returns its
// package. Absent, already terminated and expired holds all yield
// ErrReservationNotFound; an expired hold found here is reclaimed on the spot.
func (e *Engine) Complete(sessionID string) (string, error) {
	now := e.now()

	for attempt := 0; attempt < lookupAttempts; attempt++ {
		packageID, ok := e.store.lookup(sessionID)
		if !ok {
			break
		}
		p, ok := e.store.partition(packageID)
		if !ok {
			break
		}

		p.mu.Lock()
		r, held := p.holds[sessionID]
		if !held {
			// Re-bound to another package since lookup.
			p.mu.Unlock()
			continue
		}

		delete(p.holds, sessionID)
		e.store.unbind(sessionID, packageID)
		p.pool.Reserved--

		if r.Expired(now) {
			e.recorder.RecordAbandonment(1)
			ev := e.event(events.TypeExpired, p.pool, sessionID, r.ID, now)
			p.mu.Unlock()
			e.publish(ev)
			break
		}

		p.pool.Sold++
		e.recorder.RecordConversion(packageID, now)
		evs := []events.Event{e.event(events.TypeCompleted, p.pool, sessionID, r.ID, now)}
		if p.pool.SoldOut() {
			evs = append(evs, e.event(events.TypeSoldOut, p.pool, "", "", now))
		}
		p.mu.Unlock()

		e.publish(evs...)
		return packageID, nil
	}

	return "", fmt.Errorf("%w: session %q", ErrReservationNotFound, sessionID)
}

// Cancel releases the session's hold as an abandoned checkout. Cancelling a
// session without a hold is a no-op.
func (e *Engine) Cancel(sessionID string) {
	now := e.now()

	for attempt := 0; attempt < lookupAttempts; attempt++ {
		packageID, ok := e.store.lookup(sessionID)
		if !ok {
			return
		}
		p, ok := e.store.partition(packageID)
		if !ok {
			return
		}

		p.mu.Lock()
		r, held := p.holds[sessionID]
		if !held {
			p.mu.Unlock()
			continue
		}
		delete(p.holds, sessionID)
		e.store.unbind(sessionID, packageID)
		p.pool.Reserved--
		e.recorder.RecordAbandonment(1)
		ev := e.event(events.TypeCancelled, p.pool, sessionID, r.ID, now)
		p.mu.Unlock()

		e.publish(ev)
		return
	}
}

// SweepExpired releases every hold with ExpiresAt <= now and returns how
// many were released. Packages are swept one at a time under their own lock.
func (e *Engine) SweepExpired(now time.Time) int {
	total := 0
	for _, id := range e.store.order {
		total += e.sweepPartition(id, now)
	}
	return total
}

func (e *Engine) sweepPartition(packageID string, now time.Time) int {
	p := e.store.partitions[packageID]

	var evs []events.Event
	p.mu.Lock()
	for sessionID, r := range p.holds {
		if !r.Expired(now) {
			continue
		}
		delete(p.holds, sessionID)
		e.store.unbind(sessionID, packageID)
		p.pool.Reserved--
		evs = append(evs, e.event(events.TypeExpired, p.pool, sessionID, r.ID, now))
	}
	if len(evs) > 0 {
		e.recorder.RecordAbandonment(len(evs))
	}
	p.mu.Unlock()

	if len(evs) > 0 {
		e.logger.Debug("Expired reservations released", "packageId", packageID, "count", len(evs))
		e.publish(evs...)
	}
	return len(evs)
}

// Pool returns a consistent snapshot of one package's counters.
func (e *Engine) Pool(packageID string) (Pool, error) {
	p, ok := e.store.partition(packageID)
	if !ok {
		return Pool{}, unknownPackage(packageID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool, nil
}

// Pools returns per-package snapshots in catalog order. Each snapshot is
// consistent on its own; packages are read one after another.
func (e *Engine) Pools() []Pool {
	pools := make([]Pool, 0, len(e.store.order))
	for _, id := range e.store.order {
		p := e.store.partitions[id]
		p.mu.Lock()
		pools = append(pools, p.pool)
		p.mu.Unlock()
	}
	return pools
}

// PackageIDs returns the configured package ids in catalog order.
func (e *Engine) PackageIDs() []string {
	ids := make([]string, len(e.store.order))
	copy(ids, e.store.order)
	return ids
}

// HasPackage reports whether packageID is configured.
func (e *Engine) HasPackage(packageID string) bool {
	_, ok := e.store.partition(packageID)
	return ok
}

// ActiveReservations returns the number of holds not yet terminated,
// including expired holds awaiting a sweep.
func (e *Engine) ActiveReservations() int {
	return e.store.Len()
}

// Reservation returns the hold currently owned by sessionID.
func (e *Engine) Reservation(sessionID string) (Reservation, bool) {
	return e.store.Get(sessionID)
}

func (e *Engine) event(t events.Type, pool Pool, sessionID, reservationID string, at time.Time) events.Event {
	return events.Event{
		Type:          t,
		PackageID:     pool.PackageID,
		SessionID:     sessionID,
		ReservationID: reservationID,
		At:            at,
		Total:         pool.Total,
		Sold:          pool.Sold,
		Reserved:      pool.Reserved,
	}
}

func (e *Engine) publish(evs ...events.Event) {
	for _, ev := range evs {
		for _, l := range e.listeners {
			l.HandleInventoryEvent(ev)
		}
	}
}
