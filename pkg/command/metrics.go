package command

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// PhaseMetrics stores timings of one phase of a command using atomic operations
type PhaseMetrics struct {
	Count     atomic.Int64
	TotalTime atomic.Int64 // nanoseconds
	MinTime   atomic.Int64 // nanoseconds
	MaxTime   atomic.Int64 // nanoseconds
}

// CommandMetrics stores the load and run timings of a command
type CommandMetrics struct {
	Load PhaseMetrics
	Run  PhaseMetrics
}

// Metrics collects command timings
type Metrics struct {
	commands sync.Map // map[string]*CommandMetrics
	enabled  atomic.Bool
}

// NewMetrics creates a new metrics collector
func NewMetrics(enabled bool) *Metrics {
	m := &Metrics{}
	m.enabled.Store(enabled)
	return m
}

// RecordLoad records the duration of a deferred load
func (m *Metrics) RecordLoad(name string, duration time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.command(name).Load.record(duration)
}

// RecordRun records the duration of a command run
func (m *Metrics) RecordRun(name string, duration time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.command(name).Run.record(duration)
}

func (m *Metrics) command(name string) *CommandMetrics {
	metrics, _ := m.commands.LoadOrStore(name, &CommandMetrics{})
	return metrics.(*CommandMetrics)
}

func (p *PhaseMetrics) record(duration time.Duration) {
	durationNanos := duration.Nanoseconds()

	p.Count.Add(1)
	p.TotalTime.Add(durationNanos)

	// Update min time using CAS loop
	for {
		current := p.MinTime.Load()
		if current != 0 && durationNanos >= current {
			break
		}
		if p.MinTime.CompareAndSwap(current, durationNanos) {
			break
		}
	}

	// Update max time using CAS loop
	for {
		current := p.MaxTime.Load()
		if durationNanos <= current {
			break
		}
		if p.MaxTime.CompareAndSwap(current, durationNanos) {
			break
		}
	}
}

func (p *PhaseMetrics) copyTo(dst *PhaseMetrics) {
	dst.Count.Store(p.Count.Load())
	dst.TotalTime.Store(p.TotalTime.Load())
	dst.MinTime.Store(p.MinTime.Load())
	dst.MaxTime.Store(p.MaxTime.Load())
}

// Snapshot returns a copy of the metrics of a command
func (m *Metrics) Snapshot(name string) (*CommandMetrics, error) {
	if !m.enabled.Load() {
		return nil, errMetricsDisabled
	}

	metricsIface, exists := m.commands.Load(name)
	if !exists {
		return nil, fmt.Errorf("no metrics found for command: %s", name)
	}
	metrics := metricsIface.(*CommandMetrics)

	snapshot := &CommandMetrics{}
	metrics.Load.copyTo(&snapshot.Load)
	metrics.Run.copyTo(&snapshot.Run)
	return snapshot, nil
}
