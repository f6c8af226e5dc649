// Package performance provides operation timing for the gateway and the
// background workers.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string        `json:"operation"` // e.g. "reserve_request"
	Scope     string        `json:"scope"`     // package or session the operation ran for
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Completed bool          `json:"completed"`

	mu      sync.Mutex
	tracker *Tracker
}

// Complete marks the operation as finished and reports it to the tracker.
// Calling it more than once has no effect.
func (m *Marker) Complete() {
	m.mu.Lock()
	if m.Completed {
		m.mu.Unlock()
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
	snapshot := Sample{
		Operation: m.Operation,
		Duration:  m.Duration,
		Success:   m.Success,
		EndTime:   m.EndTime,
	}
	m.mu.Unlock()

	if m.tracker != nil {
		m.tracker.record(snapshot)
	}
}

// Elapsed returns the time since the operation started, or its final
// duration once completed.
func (m *Marker) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Completed {
		return m.Duration
	}
	return time.Since(m.StartTime)
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Error = err.Error()
	m.Success = false
}

// Sample is the completed-operation record kept by the tracker.
type Sample struct {
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	EndTime   time.Time     `json:"endTime"`
}

// OperationStats aggregates samples of one operation.
type OperationStats struct {
	Count       int           `json:"count"`
	Failures    int           `json:"failures"`
	Average     time.Duration `json:"average"`
	Max         time.Duration `json:"max"`
	SlowCount   int           `json:"slowCount"`
	LastSeenAt  time.Time     `json:"lastSeenAt"`
	totalWindow time.Duration
}

// HealthStatus represents the overall health derived from recent samples
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthUnknown  HealthStatus = "unknown"
)
