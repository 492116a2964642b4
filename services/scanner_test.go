package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscanner/config"
	"jobscanner/models"
)

func testConfig(jobs []string, files []string) *config.Config {
	cfg := config.Default()
	cfg.Env = "prod"
	cfg.EmailSubject = "Job scanner"
	cfg.EmailFrom = "scanner@example.com"
	cfg.EmailTo = "ops@example.com, oncall@example.com"
	cfg.Jobs = jobs
	cfg.EMSFiles = files
	return cfg
}

func newTestScanner(cfg *config.Config, store *fakeStore, n *recordingNotifier) *Scanner {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	var s *Scanner
	if store == nil {
		s = NewScanner(cfg, nil, n, logger)
	} else {
		s = NewScanner(cfg, store, n, logger)
	}
	s.SetClock(func() time.Time { return now })
	return s
}

func TestScanner_AllClear(t *testing.T) {
	file := sizedFile(t, "ems.log", mib)
	store := &fakeStore{records: map[string][]models.JobStatusRecord{
		"etl": {record("etl", 5*time.Minute, 60, models.StatusSuccess)},
	}}
	primary := &recordingNotifier{name: "primary"}

	result := newTestScanner(testConfig([]string{"etl"}, []string{file}), store, primary).Run(context.Background())

	require.NoError(t, result.Err)
	assert.Equal(t, OutcomeClear, result.Outcome)
	require.Len(t, primary.sent, 1)

	msg := primary.sent[0]
	assert.Equal(t, "[prod] Job scanner - All looks good !!!", msg.Subject)
	assert.Empty(t, msg.Body)
	assert.Equal(t, "scanner@example.com", msg.From)
	assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, msg.To)
}

func TestScanner_Attention(t *testing.T) {
	big := sizedFile(t, "ems.log", 25*mib)
	store := &fakeStore{records: map[string][]models.JobStatusRecord{
		"etl":   {record("etl", 10*time.Minute, 1440, models.StatusFailed)},
		"stale": {record("stale", 48*time.Hour, 30, models.StatusSuccess)},
		"fine":  {record("fine", time.Minute, 30, models.StatusSuccess)},
	}}
	primary := &recordingNotifier{name: "primary"}

	result := newTestScanner(testConfig([]string{"etl", "stale", "fine"}, []string{big}), store, primary).Run(context.Background())

	require.NoError(t, result.Err)
	assert.Equal(t, OutcomeAttention, result.Outcome)
	assert.Equal(t, []string{"etl", "stale"}, result.JobReport.FailedJobs)
	assert.Equal(t, []string{big}, result.FileReport.OversizedFiles)

	require.Len(t, primary.sent, 1)
	msg := primary.sent[0]
	assert.Equal(t, "[prod] Job scanner - Please check", msg.Subject)
	assert.Equal(t, result.JobReport.String()+result.FileReport.String(), msg.Body)
}

func TestScanner_NoJobsNoStore(t *testing.T) {
	primary := &recordingNotifier{name: "primary"}

	result := newTestScanner(testConfig(nil, nil), nil, primary).Run(context.Background())

	assert.Equal(t, OutcomeClear, result.Outcome)
	assert.Len(t, primary.sent, 1)
}

func TestScanner_JobsWithoutStoreIsFatal(t *testing.T) {
	primary := &recordingNotifier{name: "primary"}

	result := newTestScanner(testConfig([]string{"etl"}, nil), nil, primary).Run(context.Background())

	assert.Equal(t, OutcomeFatal, result.Outcome)
	assert.Error(t, result.Err)
	assert.Empty(t, primary.sent)
}

func TestScanner_StoreFailureSendsOnlyFatalAlert(t *testing.T) {
	store := &fakeStore{
		records: map[string][]models.JobStatusRecord{
			"etl": {record("etl", 48*time.Hour, 30, models.StatusFailed)},
		},
		failOn: "billing",
	}
	primary := &recordingNotifier{name: "primary"}
	secondary := &recordingNotifier{name: "secondary"}
	cfg := testConfig([]string{"etl", "billing"}, nil)

	result := newTestScanner(cfg, store, primary).Run(context.Background())
	require.Equal(t, OutcomeFatal, result.Outcome)
	assert.Empty(t, primary.sent, "no partial report on the primary channel")

	require.NoError(t, NotifyFatal(context.Background(), secondary, cfg, "run-42", result.Err))
	require.Len(t, secondary.sent, 1)
	alert := secondary.sent[0]
	assert.Equal(t, "[prod] job scanner failed to execute", alert.Subject)
	assert.Contains(t, alert.Body, "connection refused")
	assert.Contains(t, alert.Body, "run-42")
	assert.Empty(t, primary.sent)
}

func TestScanner_MissingFileIsFatal(t *testing.T) {
	primary := &recordingNotifier{name: "primary"}

	result := newTestScanner(testConfig(nil, []string{"/does/not/exist.log"}), nil, primary).Run(context.Background())

	assert.Equal(t, OutcomeFatal, result.Outcome)
	assert.Empty(t, primary.sent)
}

func TestScanner_PrimarySendFailureIsFatal(t *testing.T) {
	primary := &recordingNotifier{name: "primary", err: errors.New("relay refused")}

	result := newTestScanner(testConfig(nil, nil), nil, primary).Run(context.Background())

	assert.Equal(t, OutcomeFatal, result.Outcome)
	assert.ErrorContains(t, result.Err, "relay refused")
	assert.ErrorContains(t, result.Err, "primary")
}

func TestNotifyFatal_SendError(t *testing.T) {
	n := &recordingNotifier{name: "smtp", err: errors.New("no route")}

	err := NotifyFatal(context.Background(), n, testConfig(nil, nil), "", errors.New("boom"))
	assert.ErrorContains(t, err, "no route")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "clear", OutcomeClear.String())
	assert.Equal(t, "attention", OutcomeAttention.String())
	assert.Equal(t, "fatal", OutcomeFatal.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
