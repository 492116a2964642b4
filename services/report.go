package services

import (
	"strings"

	"jobscanner/models"
)

const (
	subjectAllClear  = " - All looks good !!!"
	subjectAttention = " - Please check"
	subjectFatal     = "job scanner failed to execute"
)

// Aggregate joins the non-OK reports, job report first.
func Aggregate(jobReport models.JobReport, fileReport models.FileReport) models.FinalReport {
	var b strings.Builder
	if !jobReport.OK() {
		b.WriteString(jobReport.String())
	}
	if !fileReport.OK() {
		b.WriteString(fileReport.String())
	}
	return models.FinalReport{Body: b.String()}
}

// Subject picks the report subject line from the configured base subject.
func Subject(base, env string, report models.FinalReport) string {
	if report.AllClear() {
		return envPrefix(env) + base + subjectAllClear
	}
	return envPrefix(env) + base + subjectAttention
}

// FatalSubject is the subject of the scanner's own failure alert.
func FatalSubject(env string) string {
	return envPrefix(env) + subjectFatal
}

// FatalBody carries the error text of the failed run.
func FatalBody(runID string, err error) string {
	var b strings.Builder
	b.WriteString("Error Message: ")
	b.WriteString(err.Error())
	if runID != "" {
		b.WriteString("\n\nRun ID: ")
		b.WriteString(runID)
	}
	return b.String()
}

func envPrefix(env string) string {
	if env == "" {
		return ""
	}
	return "[" + env + "] "
}
