// Package events provides inventory transition events
package events

import "time"

// Type names a reservation lifecycle transition.
type Type string

const (
	TypeReserved  Type = "reserved"
	TypeReplaced  Type = "replaced"
	TypeCompleted Type = "completed"
	TypeCancelled Type = "cancelled"
	TypeExpired   Type = "expired"
	TypeSoldOut   Type = "sold_out"
)

// Event describes one transition together with the pool counters observed
// inside the critical section that produced it.
type Event struct {
	Type          Type
	PackageID     string
	SessionID     string
	ReservationID string
	At            time.Time

	Total    uint
	Sold     uint
	Reserved uint
}

// Listener receives events after the engine has released its locks.
// Implementations must not block for long and must not call mutating engine
// operations synchronously.
type Listener interface {
	HandleInventoryEvent(Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(Event)

// HandleInventoryEvent calls f(e).
func (f ListenerFunc) HandleInventoryEvent(e Event) { f(e) }
