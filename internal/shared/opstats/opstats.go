// Package opstats holds the process-wide operational counters shown on the status page.
package opstats

import (
	"sync"
	"time"
)

const (
	StatusInitializing = "initializing"
	StatusOperational  = "operational"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Status          string     `json:"status"`
	Version         string     `json:"version"`
	TotalAnalyses   int        `json:"total_analyses"`
	LastAnalysis    *time.Time `json:"last_analysis"`
	MonitoredAssets []string   `json:"monitored_assets"`
	UptimeStart     time.Time  `json:"uptime_start"`
}

// Counters is safe for concurrent use. The analysis usecase is its only writer.
type Counters struct {
	mu      sync.RWMutex
	status  string
	version string
	total   int
	last    time.Time
	assets  []string
	started time.Time
}

// New returns counters in the initializing state.
func New(version string, assets []string, started time.Time) *Counters {
	return &Counters{
		status:  StatusInitializing,
		version: version,
		assets:  append([]string(nil), assets...),
		started: started,
	}
}

// RecordAnalysis counts one completed directional analysis.
func (c *Counters) RecordAnalysis(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.last = at
	c.status = StatusOperational
}

// Snapshot returns a copy of the current counters.
func (c *Counters) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Status:          c.status,
		Version:         c.version,
		TotalAnalyses:   c.total,
		MonitoredAssets: append([]string(nil), c.assets...),
		UptimeStart:     c.started,
	}
	if !c.last.IsZero() {
		last := c.last
		s.LastAnalysis = &last
	}
	return s
}
