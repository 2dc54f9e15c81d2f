// Package metrics is the process-wide metrics facade used by the profiler.
//
// Code records through the package-level functions; a concrete Backend
// (Datadog, or a test fake) is installed once with SetBackend. Until then
// every call is a no-op.
package metrics

import (
	"sync"
	"time"
)

// Metric names.
const (
	RunsTotal    = "probe_runs_total"            // {status}
	RecordsTotal = "probe_records_total"         // {format}
	FieldsTotal  = "probe_fields_total"          // {type}
	StepDuration = "probe_step_duration_seconds" // {step,status}
)

// Labels are metric dimensions.
type Labels map[string]string

// Backend receives metric observations.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nop{}
)

// SetBackend installs b. A nil b restores the no-op backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nop{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush asks the installed backend to submit buffered data.
func Flush() error {
	return current().Flush()
}

// Status maps an error to the "status" label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStep records the duration of one pipeline step since start.
func ObserveStep(step string, start time.Time, err error) {
	ObserveHistogram(StepDuration, time.Since(start).Seconds(), Labels{
		"step":   step,
		"status": Status(err),
	})
}
