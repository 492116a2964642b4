package services

import (
	"fmt"
	"os"

	"jobscanner/models"
)

// AuditFile stats path for its current size.
func AuditFile(path string) (models.FileAuditEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileAuditEntry{}, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	return models.FileAuditEntry{Path: path, SizeBytes: info.Size()}, nil
}

// ExceedsLimit is a strict comparison: a file exactly at the limit is fine.
func ExceedsLimit(entry models.FileAuditEntry, limitMB float64) bool {
	return entry.SizeMB() > limitMB
}

// EvaluateFiles lists every path larger than limitMB. A path that cannot be
// stat'ed aborts the scan.
func EvaluateFiles(paths []string, limitMB float64) (models.FileReport, error) {
	report := models.FileReport{LimitMB: limitMB}

	for _, path := range paths {
		entry, err := AuditFile(path)
		if err != nil {
			return models.FileReport{}, err
		}
		if ExceedsLimit(entry, limitMB) {
			report.OversizedFiles = append(report.OversizedFiles, path)
		}
	}

	return report, nil
}
