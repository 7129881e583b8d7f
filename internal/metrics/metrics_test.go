package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStep(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep("health check", true, 20*time.Millisecond)
	r.ObserveStep("health check", true, 30*time.Millisecond)
	r.ObserveStep("battle", false, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.steps.WithLabelValues("health check", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("battle", "fail")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.steps.WithLabelValues("battle", "pass")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stepDuration))
}

func TestObserveRun(t *testing.T) {
	r := NewRecorder()
	start := time.Unix(1700000000, 0)
	r.ObserveRun(true, start, start.Add(1500*time.Millisecond))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastSuccess))
	assert.Equal(t, 1700000001.0, testutil.ToFloat64(r.lastRun))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.runDuration))

	r.ObserveRun(false, start, start)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastSuccess))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep("clear meals", true, 10*time.Millisecond)
	r.ObserveRun(true, time.Now(), time.Now())

	path := filepath.Join(t.TempDir(), "smoke.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mealmax_smoke_steps_total{outcome="pass",step="clear meals"} 1`)
	assert.Contains(t, string(data), "mealmax_smoke_last_run_success 1")
}

func TestWriteTextfileBadDir(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "smoke.prom"))
	assert.Error(t, err)
}
