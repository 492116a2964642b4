package models

import (
	"strconv"
	"strings"
	"time"
)

// LastRunLayout is the only accepted format for JobStatusRecord.LastRun in the
// status store.
const LastRunLayout = "2006-01-02T15:04:05Z"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	// MaxIntervalMinutes bounds JobStatusRecord.Interval (ten years) so the
	// next expected run stays representable as a time.Duration.
	MaxIntervalMinutes = 10 * 366 * 24 * 60

	// ReportOK is the sentinel rendered for a report with no offenders.
	ReportOK = "OK"
)

type JobStatusRecord struct {
	Job        string    `json:"job"`
	LastRun    time.Time `json:"lastrun"`
	Interval   int       `json:"interval"` // minutes
	LastStatus string    `json:"laststatus"`
}

// NextExpectedRun is LastRun plus the configured interval.
func (r JobStatusRecord) NextExpectedRun() time.Time {
	return r.LastRun.Add(time.Duration(r.Interval) * time.Minute)
}

type FileAuditEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// SizeMB converts using binary megabytes.
func (e FileAuditEntry) SizeMB() float64 {
	return float64(e.SizeBytes) / 1024 / 1024
}

// JobReport lists jobs that are overdue or reported failure, in the order
// they were detected.
type JobReport struct {
	FailedJobs []string `json:"failed_jobs"`
}

func (r JobReport) OK() bool {
	return len(r.FailedJobs) == 0
}

func (r JobReport) String() string {
	if r.OK() {
		return ReportOK
	}
	var b strings.Builder
	b.WriteString("Following jobs failed to run.\n")
	b.WriteString(strings.Repeat("-", 35))
	for _, job := range r.FailedJobs {
		b.WriteString("\n- ")
		b.WriteString(job)
	}
	b.WriteString("\n\n")
	return b.String()
}

// FileReport lists monitored files larger than LimitMB.
type FileReport struct {
	LimitMB        float64  `json:"limit_mb"`
	OversizedFiles []string `json:"oversized_files"`
}

func (r FileReport) OK() bool {
	return len(r.OversizedFiles) == 0
}

func (r FileReport) String() string {
	if r.OK() {
		return ReportOK
	}
	var b strings.Builder
	b.WriteString("Following ems files need attention as their size is more than ")
	b.WriteString(strconv.FormatFloat(r.LimitMB, 'f', -1, 64))
	b.WriteString("MB\n")
	b.WriteString(strings.Repeat("-", 92))
	b.WriteString("\n")
	for _, path := range r.OversizedFiles {
		b.WriteString("\n- ")
		b.WriteString(path)
	}
	b.WriteString("\n")
	return b.String()
}

// FinalReport is the body handed to the notification channel. An empty body
// means every check passed.
type FinalReport struct {
	Body string `json:"body"`
}

func (r FinalReport) AllClear() bool {
	return r.Body == ""
}
