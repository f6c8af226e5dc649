// Package messaging pushes live inventory and social-proof updates to
// connected storefront clients over WebSocket.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/events"
	"github.com/gorilla/websocket"
)

const (
	TypeInventoryUpdate   = "inventory-update"
	TypeSocialProofUpdate = "social-proof-update"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Message is one frame pushed to clients.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Source produces the current set of frames to push.
type Source func() []Message

// Client represents a single connected storefront client.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// NewClient wraps a WebSocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{Conn: conn, Send: make(chan []byte, sendBuffer)}
}

// InventoryBroadcaster manages all connected clients and broadcasts
// snapshots on a fixed interval and whenever inventory changes.
type InventoryBroadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	trigger    chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	source     Source
	interval   time.Duration
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewInventoryBroadcaster creates a new broadcaster instance.
func NewInventoryBroadcaster(source Source, interval time.Duration, logger *slog.Logger) *InventoryBroadcaster {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &InventoryBroadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		trigger:    make(chan struct{}, 1),
		done:       make(chan struct{}),
		source:     source,
		interval:   interval,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop until ctx is cancelled. Once it
// returns, pending and future Serve calls no longer wait on the hub.
func (b *InventoryBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	defer b.stopOnce.Do(func() { close(b.done) })

	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Debug("WebSocket client registered", "clients", count)
			for _, frame := range b.frames() {
				b.deliver(client, frame)
			}

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Debug("WebSocket client unregistered", "clients", count)

		case <-ticker.C:
			b.broadcast()

		case <-b.trigger:
			b.broadcast()
		}
	}
}

// HandleInventoryEvent schedules an out-of-band push after a sale or a
// sell-out. It never blocks the engine.
func (b *InventoryBroadcaster) HandleInventoryEvent(ev events.Event) {
	if ev.Type != events.TypeCompleted && ev.Type != events.TypeSoldOut {
		return
	}
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// ClientCount returns the number of registered clients.
func (b *InventoryBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Serve registers conn and pumps frames until the client disconnects, ctx
// ends or the hub stops. It blocks for the lifetime of the connection.
func (b *InventoryBroadcaster) Serve(ctx context.Context, conn *websocket.Conn) {
	client := NewClient(conn)
	select {
	case b.register <- client:
	case <-ctx.Done():
		conn.Close()
		return
	case <-b.done:
		conn.Close()
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.readPump(client)
	}()

	b.writePump(client, done)

	select {
	case b.unregister <- client:
	case <-ctx.Done():
	case <-b.done:
	}
	conn.Close()
}

// readPump discards inbound frames and keeps the read deadline fresh.
func (b *InventoryBroadcaster) readPump(client *Client) {
	client.Conn.SetReadLimit(512)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *InventoryBroadcaster) writePump(client *Client, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case message, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ping.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (b *InventoryBroadcaster) frames() [][]byte {
	messages := b.source()
	frames := make([][]byte, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			b.logger.Error("Failed to marshal broadcast frame", "type", m.Type, "error", err)
			continue
		}
		frames = append(frames, data)
	}
	return frames
}

func (b *InventoryBroadcaster) broadcast() {
	b.mu.RLock()
	if len(b.clients) == 0 {
		b.mu.RUnlock()
		return
	}
	b.mu.RUnlock()

	frames := b.frames()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		for _, frame := range frames {
			b.deliver(client, frame)
		}
	}
}

// deliver drops the frame when the client's buffer is full.
func (b *InventoryBroadcaster) deliver(client *Client, frame []byte) {
	select {
	case client.Send <- frame:
	default:
	}
}
