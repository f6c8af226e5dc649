package inventory

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/events"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingRecorder struct {
	mu           sync.Mutex
	conversions  int
	abandoned    int
	replacements int
}

func (r *countingRecorder) RecordConversion(string, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversions++
}

func (r *countingRecorder) RecordAbandonment(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned += n
}

func (r *countingRecorder) RecordReplacement() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replacements++
}

type EngineTestSuite struct {
	suite.Suite
	clock    *fakeClock
	recorder *countingRecorder
	engine   *Engine

	eventsMu sync.Mutex
	events   []events.Event
}

func (s *EngineTestSuite) SetupTest() {
	s.clock = newFakeClock()
	s.recorder = &countingRecorder{}
	s.events = nil
	s.engine = s.newEngine(
		Package{ID: "starter", Total: 10},
		Package{ID: "business", Total: 3},
		Package{ID: "enterprise", Total: 1},
	)
}

func (s *EngineTestSuite) newEngine(pkgs ...Package) *Engine {
	e, err := NewEngine(
		Config{Packages: pkgs, DefaultTTL: 15 * time.Minute},
		WithClock(s.clock.Now),
		WithRecorder(s.recorder),
		WithListener(events.ListenerFunc(func(ev events.Event) {
			s.eventsMu.Lock()
			defer s.eventsMu.Unlock()
			s.events = append(s.events, ev)
		})),
	)
	s.Require().NoError(err)
	return e
}

func (s *EngineTestSuite) pool(id string) Pool {
	p, err := s.engine.Pool(id)
	s.Require().NoError(err)
	s.Require().True(p.consistent(), "invariant violated: %+v", p)
	return p
}

func (s *EngineTestSuite) eventTypes() []events.Type {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	out := make([]events.Type, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

func (s *EngineTestSuite) TestReserveReplaceCompleteScenario() {
	r, err := s.engine.Reserve("starter", "s1", 0)
	s.Require().NoError(err)
	s.False(r.Replaced)
	s.Equal(s.clock.Now().Add(15*time.Minute), r.ExpiresAt)
	s.Equal(uint(9), s.pool("starter").Available())

	again, err := s.engine.Reserve("starter", "s1", 0)
	s.Require().NoError(err)
	s.True(again.Replaced)
	s.NotEqual(r.ID, again.ID)
	s.Equal(uint(9), s.pool("starter").Available())

	pkg, err := s.engine.Complete("s1")
	s.Require().NoError(err)
	s.Equal("starter", pkg)

	p := s.pool("starter")
	s.Equal(uint(1), p.Sold)
	s.Equal(uint(0), p.Reserved)

	_, err = s.engine.Complete("s1")
	s.ErrorIs(err, ErrReservationNotFound)
	s.True(IsNotFound(err))

	s.Equal(1, s.recorder.conversions)
	s.Equal(1, s.recorder.replacements)
	s.Equal([]events.Type{events.TypeReserved, events.TypeReplaced, events.TypeCompleted}, s.eventTypes())
}

func (s *EngineTestSuite) TestReserveUnknownPackage() {
	_, err := s.engine.Reserve("nope", "s1", 0)
	s.ErrorIs(err, ErrUnknownPackage)
	s.Equal(0, s.engine.ActiveReservations())
}

func (s *EngineTestSuite) TestReserveOutOfStockLeavesStateUntouched() {
	_, err := s.engine.Reserve("enterprise", "s1", 0)
	s.Require().NoError(err)

	_, err = s.engine.Reserve("enterprise", "s2", 0)
	s.ErrorIs(err, ErrOutOfStock)

	p := s.pool("enterprise")
	s.Equal(uint(1), p.Reserved)
	_, held := s.engine.Reservation("s2")
	s.False(held)
}

func (s *EngineTestSuite) TestSameSessionRenewsWhenExhausted() {
	_, err := s.engine.Reserve("enterprise", "s1", 0)
	s.Require().NoError(err)
	s.Equal(uint(0), s.pool("enterprise").Available())

	s.clock.Advance(10 * time.Minute)
	r, err := s.engine.Reserve("enterprise", "s1", 0)
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(15*time.Minute), r.ExpiresAt)
	s.Equal(uint(1), s.pool("enterprise").Reserved)
}

func (s *EngineTestSuite) TestCrossPackageReplaceReleasesPriorHold() {
	_, err := s.engine.Reserve("starter", "s1", 0)
	s.Require().NoError(err)

	r, err := s.engine.Reserve("business", "s1", 0)
	s.Require().NoError(err)
	s.True(r.Replaced)

	s.Equal(uint(0), s.pool("starter").Reserved)
	s.Equal(uint(1), s.pool("business").Reserved)

	held, ok := s.engine.Reservation("s1")
	s.Require().True(ok)
	s.Equal("business", held.PackageID)
	s.Equal(1, s.engine.ActiveReservations())
}

func (s *EngineTestSuite) TestCrossPackageReplaceOutOfStockKeepsPriorHold() {
	_, err := s.engine.Reserve("enterprise", "other", 0)
	s.Require().NoError(err)
	_, err = s.engine.Reserve("starter", "s1", 0)
	s.Require().NoError(err)

	_, err = s.engine.Reserve("enterprise", "s1", 0)
	s.ErrorIs(err, ErrOutOfStock)

	held, ok := s.engine.Reservation("s1")
	s.Require().True(ok)
	s.Equal("starter", held.PackageID)
	s.Equal(uint(1), s.pool("starter").Reserved)
}

func (s *EngineTestSuite) TestCancelIsIdempotent() {
	_, err := s.engine.Reserve("business", "s1", 0)
	s.Require().NoError(err)

	s.engine.Cancel("s1")
	s.engine.Cancel("s1")
	s.engine.Cancel("never-reserved")

	p := s.pool("business")
	s.Equal(uint(0), p.Reserved)
	s.Equal(uint(3), p.Available())
	s.Equal(1, s.recorder.abandoned)

	_, err = s.engine.Complete("s1")
	s.ErrorIs(err, ErrReservationNotFound)
}

func (s *EngineTestSuite) TestExpiryReclaimsCapacity() {
	for i := 0; i < 3; i++ {
		_, err := s.engine.Reserve("business", fmt.Sprintf("s%d", i), 0)
		s.Require().NoError(err)
	}
	_, err := s.engine.Reserve("business", "late", 0)
	s.Require().ErrorIs(err, ErrOutOfStock)

	s.clock.Advance(15 * time.Minute)
	s.Equal(3, s.engine.SweepExpired(s.clock.Now()))
	s.Equal(uint(3), s.pool("business").Available())
	s.Equal(3, s.recorder.abandoned)

	_, err = s.engine.Reserve("business", "late", 0)
	s.NoError(err)
}

func (s *EngineTestSuite) TestReserveSweepsBeforeChecking() {
	_, err := s.engine.Reserve("enterprise", "s1", 0)
	s.Require().NoError(err)

	s.clock.Advance(16 * time.Minute)
	_, err = s.engine.Reserve("enterprise", "s2", 0)
	s.Require().NoError(err)

	_, err = s.engine.Complete("s1")
	s.ErrorIs(err, ErrReservationNotFound)
	s.Equal(uint(1), s.pool("enterprise").Reserved)
}

func (s *EngineTestSuite) TestCompleteExpiredHoldReclaims() {
	_, err := s.engine.Reserve("starter", "s1", time.Minute)
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	_, err = s.engine.Complete("s1")
	s.ErrorIs(err, ErrReservationNotFound)

	p := s.pool("starter")
	s.Equal(uint(0), p.Sold)
	s.Equal(uint(0), p.Reserved)
	s.Equal(1, s.recorder.abandoned)
	s.Equal(0, s.recorder.conversions)
	s.Contains(s.eventTypes(), events.TypeExpired)
}

func (s *EngineTestSuite) TestSoldOutEvent() {
	_, err := s.engine.Reserve("enterprise", "s1", 0)
	s.Require().NoError(err)
	_, err = s.engine.Complete("s1")
	s.Require().NoError(err)

	s.True(s.pool("enterprise").SoldOut())
	s.Equal(events.TypeSoldOut, s.eventTypes()[len(s.eventTypes())-1])
}

func (s *EngineTestSuite) TestPoolsInCatalogOrder() {
	pools := s.engine.Pools()
	s.Require().Len(pools, 3)
	s.Equal([]string{"starter", "business", "enterprise"}, s.engine.PackageIDs())
	for i, id := range s.engine.PackageIDs() {
		s.Equal(id, pools[i].PackageID)
	}
	s.True(s.engine.HasPackage("business"))
	s.False(s.engine.HasPackage("nope"))
}

func (s *EngineTestSuite) TestConcurrentReserveNeverOversells() {
	const total, callers = 25, 200
	e := s.newEngine(Package{ID: "flash", Total: total})

	var ok, out int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := e.Reserve("flash", fmt.Sprintf("session-%d", i), 0)
			switch {
			case err == nil:
				atomic.AddInt64(&ok, 1)
			case err != nil:
				s.ErrorIs(err, ErrOutOfStock)
				atomic.AddInt64(&out, 1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	s.Equal(int64(total), ok)
	s.Equal(int64(callers-total), out)

	p, err := e.Pool("flash")
	s.Require().NoError(err)
	s.True(p.consistent())
	s.Equal(uint(total), p.Reserved)
}

func (s *EngineTestSuite) TestTwoConcurrentReservesForLastUnit() {
	e := s.newEngine(Package{ID: "one", Total: 1})

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, session := range []string{"a", "b"} {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			_, err := e.Reserve("one", session, 0)
			errs <- err
		}(session)
	}
	wg.Wait()
	close(errs)

	var succeeded, failed int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, ErrOutOfStock)
		failed++
	}
	s.Equal(1, succeeded)
	s.Equal(1, failed)
}

func (s *EngineTestSuite) TestConcurrentMixedOperationsKeepInvariant() {
	e := s.newEngine(Package{ID: "a", Total: 5}, Package{ID: "b", Total: 5})

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				session := fmt.Sprintf("s%d", (w*7+i)%20)
				switch i % 5 {
				case 0, 1:
					_, _ = e.Reserve("a", session, 0)
				case 2:
					_, _ = e.Reserve("b", session, 0)
				case 3:
					e.Cancel(session)
				case 4:
					e.SweepExpired(s.clock.Now())
				}
				for _, p := range e.Pools() {
					if !p.consistent() {
						s.Failf("invariant violated", "%+v", p)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	live := 0
	for _, p := range e.Pools() {
		s.True(p.consistent())
		live += int(p.Reserved)
	}
	s.Equal(live, e.ActiveReservations())
}

func (s *EngineTestSuite) TestSweepRacesCompleteExactlyOneWins() {
	for round := 0; round < 50; round++ {
		clock := newFakeClock()
		e, err := NewEngine(Config{Packages: []Package{{ID: "p", Total: 1}}}, WithClock(clock.Now))
		s.Require().NoError(err)

		_, err = e.Reserve("p", "s", time.Minute)
		s.Require().NoError(err)
		clock.Advance(time.Minute)

		var swept int
		var completeErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			swept = e.SweepExpired(clock.Now())
		}()
		go func() {
			defer wg.Done()
			_, completeErr = e.Complete("s")
		}()
		wg.Wait()

		s.ErrorIs(completeErr, ErrReservationNotFound)
		s.LessOrEqual(swept, 1)
		p, _ := e.Pool("p")
		s.Equal(uint(0), p.Reserved)
		s.Equal(uint(0), p.Sold)
	}
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
