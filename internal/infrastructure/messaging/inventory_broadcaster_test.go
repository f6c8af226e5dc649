package messaging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/events"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, b *InventoryBroadcaster, ctx context.Context) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.Serve(ctx, conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m Message
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestInitialPushOnConnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := func() []Message {
		return []Message{
			{Type: TypeInventoryUpdate, Data: map[string]int{"starter": 3}, Timestamp: time.Now()},
			{Type: TypeSocialProofUpdate, Data: "proof", Timestamp: time.Now()},
		}
	}
	b := NewInventoryBroadcaster(source, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go b.Run(ctx)

	conn := dial(t, newTestServer(t, b, ctx))

	assert.Equal(t, TypeInventoryUpdate, readMessage(t, conn).Type)
	assert.Equal(t, TypeSocialProofUpdate, readMessage(t, conn).Type)
	assert.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestEventTriggersPush(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	source := func() []Message {
		n := calls.Add(1)
		return []Message{{Type: TypeInventoryUpdate, Data: n, Timestamp: time.Now()}}
	}
	b := NewInventoryBroadcaster(source, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go b.Run(ctx)

	conn := dial(t, newTestServer(t, b, ctx))
	first := readMessage(t, conn)
	assert.EqualValues(t, 1, first.Data)

	b.HandleInventoryEvent(events.Event{Type: events.TypeReserved})
	b.HandleInventoryEvent(events.Event{Type: events.TypeCompleted, PackageID: "starter"})

	second := readMessage(t, conn)
	assert.EqualValues(t, 2, second.Data)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewInventoryBroadcaster(func() []Message { return nil }, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go b.Run(ctx)

	srv := newTestServer(t, b, ctx)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeReturnsAfterHubStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewInventoryBroadcaster(func() []Message { return nil }, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	stopped := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(stopped)
	}()

	served := make(chan struct{}, 2)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.Serve(context.Background(), conn)
		served <- struct{}{}
	}))
	defer srv.Close()

	connected := dial(t, srv)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	connected.Close()

	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return for a client connected before shutdown")
	}

	late := dial(t, srv)
	late.Close()
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return for a client connected after shutdown")
	}
}

func TestHandleInventoryEventNeverBlocks(t *testing.T) {
	b := NewInventoryBroadcaster(func() []Message { return nil }, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := 0; i < 10; i++ {
		b.HandleInventoryEvent(events.Event{Type: events.TypeSoldOut})
	}
	assert.Len(t, b.trigger, 1)
	assert.Equal(t, 30*time.Second, b.interval)
}
