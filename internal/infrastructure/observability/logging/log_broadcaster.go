package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// LogEntry represents a single log entry sent to a streaming client.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Channel   string `json:"channel"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Client represents a single connected admin listening for logs.
type Client struct {
	id      string
	Channel chan []byte
	filters AppliedFilters
}

// ID returns the client's connection id.
func (c *Client) ID() string { return c.id }

// AppliedFilters defines the filtering criteria for a client.
type AppliedFilters struct {
	Channel Channel    // "all" matches every channel
	Level   slog.Level // minimum level
}

// LogBroadcaster manages clients and broadcasts log messages.
type LogBroadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan LogEntry
	mu         sync.RWMutex
}

// NewLogBroadcaster creates a broadcaster. Call Run to start distributing.
func NewLogBroadcaster() *LogBroadcaster {
	return &LogBroadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan LogEntry, 1000),
	}
}

// Run is the central loop that manages clients until ctx is cancelled.
func (b *LogBroadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
			return
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
		case entry := <-b.broadcast:
			b.distribute(entry)
		}
	}
}

// distribute sends a log entry to all clients whose filters match.
func (b *LogBroadcaster) distribute(entry LogEntry) {
	message, err := json.Marshal(entry)
	if err != nil {
		return
	}
	level := ParseLevel(entry.Level)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.clients {
		channelMatch := client.filters.Channel == "all" || client.filters.Channel == Channel(entry.Channel)
		if !channelMatch || level < client.filters.Level {
			continue
		}
		select {
		case client.Channel <- message:
		default:
			// slow client, drop
		}
	}
}

// SubmitLog queues an entry without blocking; entries are dropped under load.
func (b *LogBroadcaster) SubmitLog(entry LogEntry) {
	select {
	case b.broadcast <- entry:
	default:
	}
}

// NewClient creates a new client for the broadcaster.
func (b *LogBroadcaster) NewClient(filters AppliedFilters) *Client {
	return &Client{
		id:      ulid.Make().String(),
		Channel: make(chan []byte, 100),
		filters: filters,
	}
}

// RegisterClient adds a client. It blocks until Run accepts it or ctx ends.
func (b *LogBroadcaster) RegisterClient(ctx context.Context, client *Client) bool {
	select {
	case b.register <- client:
		return true
	case <-ctx.Done():
		return false
	}
}

// UnregisterClient removes a client and closes its channel.
func (b *LogBroadcaster) UnregisterClient(ctx context.Context, client *Client) {
	select {
	case b.unregister <- client:
	case <-ctx.Done():
	}
}

// ClientCount returns the number of connected clients.
func (b *LogBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
