// Package metrics records smoke-run step outcomes in a private Prometheus
// registry and can dump it in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mealmax_smoke"

type Recorder struct {
	reg *prometheus.Registry

	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	lastSuccess  prometheus.Gauge
	lastRun      prometheus.Gauge
	runDuration  prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		steps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Executed smoke steps by outcome",
			},
			[]string{"step", "outcome"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of smoke steps in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run passed every step, 0 otherwise",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
	}
}

func outcome(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}

// ObserveStep satisfies smoke.Observer.
func (r *Recorder) ObserveStep(step string, passed bool, d time.Duration) {
	r.steps.WithLabelValues(step, outcome(passed)).Inc()
	r.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (r *Recorder) ObserveRun(passed bool, started, finished time.Time) {
	if passed {
		r.lastSuccess.Set(1)
	} else {
		r.lastSuccess.Set(0)
	}
	r.lastRun.Set(float64(finished.Unix()))
	r.runDuration.Set(finished.Sub(started).Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
