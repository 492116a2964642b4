package services

import (
	"context"
	"fmt"
	"time"

	"jobscanner/models"
	"jobscanner/store"
)

// IsOverdue reports whether the record's next expected run is at or before
// now.
func IsOverdue(record models.JobStatusRecord, now time.Time) bool {
	return !now.Before(record.NextExpectedRun())
}

// NeedsAttention is true when the job reported failure or missed its
// window.
func NeedsAttention(record models.JobStatusRecord, now time.Time) bool {
	return record.LastStatus == models.StatusFailed || IsOverdue(record, now)
}

// EvaluateJobs checks every status record of every job. A job with at least
// one failed or overdue record is listed once, in the order first seen. Any
// store error aborts the whole evaluation.
func EvaluateJobs(ctx context.Context, statuses store.StatusStore, now time.Time, jobs []string) (models.JobReport, error) {
	var report models.JobReport
	seen := make(map[string]bool)

	for _, job := range jobs {
		records, err := statuses.GetStatus(ctx, job)
		if err != nil {
			return models.JobReport{}, fmt.Errorf("failed to get status for job %q: %w", job, err)
		}

		for _, record := range records {
			if !NeedsAttention(record, now) {
				continue
			}
			name := record.Job
			if name == "" {
				name = job
			}
			if !seen[name] {
				seen[name] = true
				report.FailedJobs = append(report.FailedJobs, name)
			}
		}
	}

	return report, nil
}
