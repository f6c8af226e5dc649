package inventory

import (
	"sync"
	"time"
)

// Reservation is a TTL-bounded hold on one unit of a package.
type Reservation struct {
	ID        string    `json:"id"`
	PackageID string    `json:"packageId"`
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`

	// Replaced is set when the hold superseded an earlier one for the same session.
	Replaced bool `json:"replaced"`
}

// Expired reports whether the hold has lapsed at now (ExpiresAt <= now).
func (r Reservation) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Remaining returns the time left on the hold, never negative.
func (r Reservation) Remaining(now time.Time) time.Duration {
	if d := r.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// partition is one package's mutual-exclusion domain: its pool counters and
// the holds taken against it.
type partition struct {
	mu    sync.Mutex
	pool  Pool
	holds map[string]Reservation // keyed by session
}

// ReservationStore owns every live reservation. Holds live in the partition
// of their package; index maps a session to the package it currently holds.
//
// Lock order is partition.mu before indexMu. indexMu is a leaf lock and no
// code path acquires a partition lock while holding it.
type ReservationStore struct {
	partitions map[string]*partition
	order      []string

	indexMu sync.Mutex
	index   map[string]string
}

func newReservationStore(pools []Pool) *ReservationStore {
	s := &ReservationStore{
		partitions: make(map[string]*partition, len(pools)),
		order:      make([]string, 0, len(pools)),
		index:      make(map[string]string),
	}
	for _, p := range pools {
		s.partitions[p.PackageID] = &partition{
			pool:  p,
			holds: make(map[string]Reservation),
		}
		s.order = append(s.order, p.PackageID)
	}
	return s
}

func (s *ReservationStore) partition(packageID string) (*partition, bool) {
	p, ok := s.partitions[packageID]
	return p, ok
}

// lookup returns the package a session is bound to.
func (s *ReservationStore) lookup(sessionID string) (string, bool) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	packageID, ok := s.index[sessionID]
	return packageID, ok
}

// bind points sessionID at packageID and returns the previous binding.
func (s *ReservationStore) bind(sessionID, packageID string) string {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	prev := s.index[sessionID]
	s.index[sessionID] = packageID
	return prev
}

// unbind removes the binding only if it still points at packageID.
func (s *ReservationStore) unbind(sessionID, packageID string) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.index[sessionID] == packageID {
		delete(s.index, sessionID)
	}
}

// boundTo reports whether sessionID is currently bound to packageID.
func (s *ReservationStore) boundTo(sessionID, packageID string) bool {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.index[sessionID] == packageID
}

// Get returns the live reservation held by sessionID, if any. Expired holds
// that have not been swept yet are still returned.
func (s *ReservationStore) Get(sessionID string) (Reservation, bool) {
	packageID, ok := s.lookup(sessionID)
	if !ok {
		return Reservation{}, false
	}
	p, ok := s.partition(packageID)
	if !ok {
		return Reservation{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.holds[sessionID]
	return r, ok
}

// Len returns the number of live reservations across all packages. Packages
// are visited one at a time, so the total is not a global snapshot.
func (s *ReservationStore) Len() int {
	n := 0
	for _, id := range s.order {
		p := s.partitions[id]
		p.mu.Lock()
		n += len(p.holds)
		p.mu.Unlock()
	}
	return n
}
