package cleanup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newEngine(t *testing.T, c *clock) *inventory.Engine {
	t.Helper()
	engine, err := inventory.NewEngine(inventory.Config{
		Packages:   []inventory.Package{{ID: "starter", Total: 2}, {ID: "enterprise", Total: 1}},
		DefaultTTL: time.Minute,
	}, inventory.WithClock(c.Now))
	require.NoError(t, err)
	return engine
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnceReleasesExpired(t *testing.T) {
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, c)

	_, err := engine.Reserve("starter", "a", 0)
	require.NoError(t, err)
	_, err = engine.Reserve("enterprise", "b", 0)
	require.NoError(t, err)

	w := NewWorker(engine, &Config{SweepInterval: time.Second}, discard())
	assert.Equal(t, 0, w.RunOnce())

	c.Advance(time.Minute)
	assert.Equal(t, 2, w.RunOnce())
	assert.Equal(t, 0, engine.ActiveReservations())

	pools := engine.Pools()
	assert.Equal(t, uint(2), pools[0].Available())
	assert.Equal(t, uint(1), pools[1].Available())
}

func TestVerboseReport(t *testing.T) {
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, c)

	_, err := engine.Reserve("enterprise", "b", 0)
	require.NoError(t, err)
	_, err = engine.Complete("b")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWorker(engine, &Config{VerboseReporting: true}, discard())
	w.SetOutput(&buf)
	w.RunOnce()

	out := buf.String()
	assert.Contains(t, out, "PERIODIC RESERVATION SWEEP")
	assert.Contains(t, out, "starter:")
	assert.Contains(t, out, "SOLD OUT")
	assert.Contains(t, out, "1 of 2 packages sold out")
	assert.Contains(t, out, "no expired reservations found")
}

func TestStartStopsOnCancel(t *testing.T) {
	c := &clock{now: time.Now()}
	engine := newEngine(t, c)
	_, err := engine.Reserve("starter", "a", 0)
	require.NoError(t, err)

	w := NewWorker(engine, &Config{SweepInterval: 10 * time.Millisecond}, discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	c.Advance(2 * time.Minute)
	assert.Eventually(t, func() bool { return engine.ActiveReservations() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
