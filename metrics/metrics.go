// Package metrics exports the outcome of a scan in the Prometheus text
// format, for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"jobscanner/services"
)

// Recorder holds the gauges describing the last run.
type Recorder struct {
	registry *prometheus.Registry

	overdueJobs     prometheus.Gauge
	oversizedFiles  prometheus.Gauge
	lastRunSuccess  prometheus.Gauge
	lastRunTime     prometheus.Gauge
	lastRunOutcomes *prometheus.GaugeVec
}

func NewRecorder(env string) *Recorder {
	labels := prometheus.Labels{}
	if env != "" {
		labels["env"] = env
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		overdueJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "jobscanner_overdue_jobs",
			Help:        "Number of jobs reported overdue or failed by the last run",
			ConstLabels: labels,
		}),
		oversizedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "jobscanner_oversized_files",
			Help:        "Number of monitored files above the size limit in the last run",
			ConstLabels: labels,
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "jobscanner_last_run_success",
			Help:        "1 if the last scan completed, 0 if the scanner itself failed",
			ConstLabels: labels,
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "jobscanner_last_run_timestamp_seconds",
			Help:        "Unix time the last scan finished",
			ConstLabels: labels,
		}),
		lastRunOutcomes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "jobscanner_last_run_outcome",
			Help:        "Outcome of the last scan (1 for the outcome that occurred)",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		r.overdueJobs,
		r.oversizedFiles,
		r.lastRunSuccess,
		r.lastRunTime,
		r.lastRunOutcomes,
	)
	return r
}

// Observe records result as the latest run.
func (r *Recorder) Observe(result services.Result, finished time.Time) {
	r.overdueJobs.Set(float64(len(result.JobReport.FailedJobs)))
	r.oversizedFiles.Set(float64(len(result.FileReport.OversizedFiles)))
	r.lastRunTime.Set(float64(finished.Unix()))

	if result.Outcome == services.OutcomeFatal {
		r.lastRunSuccess.Set(0)
	} else {
		r.lastRunSuccess.Set(1)
	}

	for _, o := range []services.Outcome{services.OutcomeClear, services.OutcomeAttention, services.OutcomeFatal} {
		v := 0.0
		if o == result.Outcome {
			v = 1
		}
		r.lastRunOutcomes.WithLabelValues(o.String()).Set(v)
	}
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically replaces path with the current metrics.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %q: %w", path, err)
	}
	return nil
}
