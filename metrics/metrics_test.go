package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscanner/models"
	"jobscanner/services"
)

func TestRecorder_ObserveAttention(t *testing.T) {
	r := NewRecorder("")
	finished := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)

	r.Observe(services.Result{
		Outcome:    services.OutcomeAttention,
		JobReport:  models.JobReport{FailedJobs: []string{"a", "b"}},
		FileReport: models.FileReport{LimitMB: 20, OversizedFiles: []string{"/var/log/ems.log"}},
	}, finished)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.overdueJobs))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.oversizedFiles))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunSuccess))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(r.lastRunTime))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunOutcomes.WithLabelValues("attention")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastRunOutcomes.WithLabelValues("clear")))
}

func TestRecorder_ObserveFatal(t *testing.T) {
	r := NewRecorder("prod")

	r.Observe(services.Fatal(errors.New("store down")), time.Now())

	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastRunSuccess))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.overdueJobs))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastRunOutcomes.WithLabelValues("fatal")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder("prod")
	r.Observe(services.Result{Outcome: services.OutcomeClear}, time.Now())

	path := filepath.Join(t.TempDir(), "jobscanner.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `jobscanner_last_run_success{env="prod"} 1`)
	assert.Contains(t, text, `jobscanner_last_run_outcome{env="prod",outcome="clear"} 1`)
	assert.True(t, strings.Contains(text, "# HELP jobscanner_overdue_jobs"))

	series, err := testutil.GatherAndCount(r.Gatherer())
	require.NoError(t, err)
	assert.Equal(t, 7, series)
}

func TestRecorder_WriteTextfile_BadDir(t *testing.T) {
	r := NewRecorder("")
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
