package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	name   string
	value  float64
	labels Labels
}

type recorder struct {
	mu       sync.Mutex
	counters []observation
	hists    []observation
	flushes  int
}

func (r *recorder) IncCounter(name string, delta float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, observation{name, delta, labels})
}

func (r *recorder) ObserveHistogram(name string, value float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hists = append(r.hists, observation{name, value, labels})
}

func (r *recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

// Not parallel: these tests swap the process-wide backend.

func TestSetBackend_RoutesCalls(t *testing.T) {
	rec := &recorder{}
	SetBackend(rec)
	t.Cleanup(func() { SetBackend(nil) })

	IncCounter(RunsTotal, 1, Labels{"status": "ok"})
	ObserveStep("load", time.Now().Add(-time.Second), errors.New("boom"))
	require.NoError(t, Flush())

	require.Len(t, rec.counters, 1)
	assert.Equal(t, RunsTotal, rec.counters[0].name)

	require.Len(t, rec.hists, 1)
	assert.Equal(t, StepDuration, rec.hists[0].name)
	assert.Equal(t, Labels{"step": "load", "status": "error"}, rec.hists[0].labels)
	assert.GreaterOrEqual(t, rec.hists[0].value, 1.0)

	assert.Equal(t, 1, rec.flushes)
}

func TestSetBackend_NilIsNop(t *testing.T) {
	SetBackend(nil)

	assert.NotPanics(t, func() {
		IncCounter(FieldsTotal, 1, nil)
		ObserveHistogram(StepDuration, 0.1, nil)
	})
	assert.NoError(t, Flush())
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "error", Status(errors.New("x")))
}
