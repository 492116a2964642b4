package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobscanner/config"
	"jobscanner/models"
	"jobscanner/notify"
	"jobscanner/store"
)

// Outcome classifies a finished run.
type Outcome int

const (
	// OutcomeClear means every job and file passed.
	OutcomeClear Outcome = iota
	// OutcomeAttention means the report lists overdue jobs or oversized files.
	OutcomeAttention
	// OutcomeFatal means the scan itself could not complete.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClear:
		return "clear"
	case OutcomeAttention:
		return "attention"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the outcome of one scan. Err is set only for OutcomeFatal; the
// reports are set only otherwise.
type Result struct {
	Outcome    Outcome
	JobReport  models.JobReport
	FileReport models.FileReport
	Final      models.FinalReport
	Err        error
}

// Fatal wraps err in a fatal Result.
func Fatal(err error) Result {
	return Result{Outcome: OutcomeFatal, Err: err}
}

// Scanner runs one pass over the configured jobs and files and sends the
// report through the primary notifier.
type Scanner struct {
	cfg      *config.Config
	statuses store.StatusStore
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewScanner creates a scanner. statuses may be nil when no jobs are
// configured.
func NewScanner(cfg *config.Config, statuses store.StatusStore, notifier notify.Notifier, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		cfg:      cfg,
		statuses: statuses,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for the overdue check.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}

// Run evaluates jobs and files, then sends the report. Nothing is sent on the
// primary channel unless every check completed.
func (s *Scanner) Run(ctx context.Context) Result {
	if len(s.cfg.Jobs) > 0 && s.statuses == nil {
		return Fatal(fmt.Errorf("jobs are configured but no status store is available"))
	}

	jobReport, err := EvaluateJobs(ctx, s.statuses, s.now().UTC(), s.cfg.Jobs)
	if err != nil {
		return Fatal(err)
	}
	s.logger.Info("job status scan completed",
		slog.Int("jobs", len(s.cfg.Jobs)),
		slog.Int("failed", len(jobReport.FailedJobs)),
	)

	fileReport, err := EvaluateFiles(s.cfg.EMSFiles, s.cfg.EMSFileLimit)
	if err != nil {
		return Fatal(err)
	}
	s.logger.Info("ems log scan completed",
		slog.Int("files", len(s.cfg.EMSFiles)),
		slog.Int("oversized", len(fileReport.OversizedFiles)),
	)

	final := Aggregate(jobReport, fileReport)
	msg := notify.Message{
		From:    s.cfg.EmailFrom,
		To:      s.cfg.Recipients(),
		Subject: Subject(s.cfg.EmailSubject, s.cfg.Env, final),
		Body:    final.Body,
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return Fatal(fmt.Errorf("failed to send report via %s: %w", s.notifier.Name(), err))
	}
	s.logger.Info("report sent",
		slog.String("notifier", s.notifier.Name()),
		slog.String("subject", msg.Subject),
	)

	result := Result{
		Outcome:    OutcomeClear,
		JobReport:  jobReport,
		FileReport: fileReport,
		Final:      final,
	}
	if !final.AllClear() {
		result.Outcome = OutcomeAttention
	}
	return result
}

// NotifyFatal sends the scanner's own failure alert. It uses only the
// addresses and environment tag from cfg.
func NotifyFatal(ctx context.Context, n notify.Notifier, cfg *config.Config, runID string, cause error) error {
	msg := notify.Message{
		From:    cfg.EmailFrom,
		To:      cfg.Recipients(),
		Subject: FatalSubject(cfg.Env),
		Body:    FatalBody(runID, cause),
	}
	if err := n.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send failure alert via %s: %w", n.Name(), err)
	}
	return nil
}
