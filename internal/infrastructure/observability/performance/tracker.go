package performance

import (
	"runtime"
	"sync"
	"time"
)

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxSamples    int           `json:"maxSamples"`    // ring size of completed samples
	SlowThreshold time.Duration `json:"slowThreshold"` // samples above this count as slow
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxSamples:    10000,
		SlowThreshold: 500 * time.Millisecond,
	}
}

// Tracker keeps a bounded window of completed operation samples.
type Tracker struct {
	mu      sync.RWMutex
	samples []Sample
	next    int
	full    bool
	active  int
	started time.Time
	config  *TrackerConfig
	onSlow  func(Sample)
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	if config.MaxSamples <= 0 {
		config.MaxSamples = DefaultTrackerConfig().MaxSamples
	}
	return &Tracker{
		samples: make([]Sample, config.MaxSamples),
		started: time.Now(),
		config:  config,
	}
}

// OnSlow registers a callback for samples exceeding the slow threshold.
// Must be called before the tracker is shared.
func (t *Tracker) OnSlow(fn func(Sample)) {
	t.onSlow = fn
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, scope string) *Marker {
	t.mu.Lock()
	t.active++
	t.mu.Unlock()

	return &Marker{
		Operation: operation,
		Scope:     scope,
		StartTime: time.Now(),
		Success:   true, // Assume success until proven otherwise
		tracker:   t,
	}
}

func (t *Tracker) record(s Sample) {
	t.mu.Lock()
	t.active--
	t.samples[t.next] = s
	t.next = (t.next + 1) % len(t.samples)
	if t.next == 0 {
		t.full = true
	}
	t.mu.Unlock()

	if t.onSlow != nil && s.Duration > t.config.SlowThreshold {
		t.onSlow(s)
	}
}

func (t *Tracker) window() []Sample {
	if t.full {
		return t.samples
	}
	return t.samples[:t.next]
}

// Stats aggregates the retained samples per operation.
func (t *Tracker) Stats() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := make(map[string]OperationStats)
	for _, s := range t.window() {
		st := stats[s.Operation]
		st.Count++
		if !s.Success {
			st.Failures++
		}
		if s.Duration > st.Max {
			st.Max = s.Duration
		}
		if s.Duration > t.config.SlowThreshold {
			st.SlowCount++
		}
		if s.EndTime.After(st.LastSeenAt) {
			st.LastSeenAt = s.EndTime
		}
		st.totalWindow += s.Duration
		stats[s.Operation] = st
	}
	for op, st := range stats {
		st.Average = st.totalWindow / time.Duration(st.Count)
		stats[op] = st
	}
	return stats
}

// Health reports degraded when more than a tenth of retained samples were
// slow or failed.
func (t *Tracker) Health() HealthStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	window := t.window()
	if len(window) == 0 {
		return HealthUnknown
	}
	bad := 0
	for _, s := range window {
		if !s.Success || s.Duration > t.config.SlowThreshold {
			bad++
		}
	}
	if bad*10 > len(window) {
		return HealthDegraded
	}
	return HealthHealthy
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	retained := len(t.window())
	active := t.active
	t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]any{
		"trackerUptime":    time.Since(t.started).String(),
		"retainedSamples":  retained,
		"activeOperations": active,
		"memoryUsageMB":    memStats.Alloc / (1024 * 1024),
		"systemMemoryMB":   memStats.Sys / (1024 * 1024),
		"health":           t.Health(),
	}
}
