package genai

import (
	"sync"
	"time"

	"github.com/claude/repsmith/internal/models"
)

// Collector aggregates generation observability counters. The engine
// updates it exactly once per Generate call, whichever path the call took.
type Collector struct {
	mu             sync.Mutex
	totalCalls     int64
	remoteResults  int64
	cacheResults   int64
	fallbackResult int64
	remoteAttempts int64
	totalLatency   time.Duration
}

// NewCollector creates an empty metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record logs one completed Generate call.
func (m *Collector) Record(source models.PlanSource, attempts int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalCalls++
	m.remoteAttempts += int64(attempts)
	m.totalLatency += elapsed

	switch source {
	case models.SourceRemote:
		m.remoteResults++
	case models.SourceCache:
		m.cacheResults++
	case models.SourceFallback:
		m.fallbackResult++
	}
}

// Snapshot is a point-in-time view of the collector.
type Snapshot struct {
	TotalCalls      int64   `json:"total_calls"`
	RemoteResults   int64   `json:"remote_results"`
	CacheResults    int64   `json:"cache_results"`
	FallbackResults int64   `json:"fallback_results"`
	RemoteAttempts  int64   `json:"remote_attempts"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
}

// Snapshot returns the current counters.
func (m *Collector) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		TotalCalls:      m.totalCalls,
		RemoteResults:   m.remoteResults,
		CacheResults:    m.cacheResults,
		FallbackResults: m.fallbackResult,
		RemoteAttempts:  m.remoteAttempts,
	}
	if m.totalCalls > 0 {
		s.AvgLatencyMs = float64(m.totalLatency.Milliseconds()) / float64(m.totalCalls)
		s.CacheHitRate = float64(m.cacheResults) / float64(m.totalCalls)
	}
	return s
}
