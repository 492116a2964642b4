// Package store reads job status records written by the monitored jobs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobscanner/models"
)

// ErrMalformedRecord is returned when a status row is missing a field or
// carries an unparseable timestamp.
var ErrMalformedRecord = errors.New("malformed job status record")

// StatusStore supplies the status records for a job.
type StatusStore interface {
	GetStatus(ctx context.Context, job string) ([]models.JobStatusRecord, error)
}

// Schema is the table the monitored jobs write to. The scanner never writes
// to it; it is exported for tests and for bootstrapping a new store.
const Schema = `
CREATE TABLE IF NOT EXISTS job_status (
	job        TEXT NOT NULL,
	lastrun    TEXT,
	"interval" INTEGER,
	laststatus TEXT
)`

// SQLStore implements StatusStore on any database/sql connection holding a
// job_status table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetStatus(ctx context.Context, job string) ([]models.JobStatusRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job, lastrun, "interval", laststatus
		FROM job_status
		WHERE job = $1
	`, job)
	if err != nil {
		return nil, fmt.Errorf("failed to query status for job %q: %w", job, err)
	}
	defer rows.Close()

	var records []models.JobStatusRecord
	for rows.Next() {
		var (
			name       string
			lastRun    sql.NullString
			interval   sql.NullInt64
			lastStatus sql.NullString
		)
		if err := rows.Scan(&name, &lastRun, &interval, &lastStatus); err != nil {
			return nil, fmt.Errorf("failed to scan status for job %q: %w", job, err)
		}

		record, err := parseRecord(name, lastRun, interval, lastStatus)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status for job %q: %w", job, err)
	}
	return records, nil
}

func parseRecord(job string, lastRun sql.NullString, interval sql.NullInt64, lastStatus sql.NullString) (models.JobStatusRecord, error) {
	if !lastRun.Valid || !interval.Valid || !lastStatus.Valid {
		return models.JobStatusRecord{}, fmt.Errorf("%w: job %q has missing fields", ErrMalformedRecord, job)
	}

	if interval.Int64 < 0 || interval.Int64 > models.MaxIntervalMinutes {
		return models.JobStatusRecord{}, fmt.Errorf("%w: job %q interval %d out of range [0, %d] minutes", ErrMalformedRecord, job, interval.Int64, models.MaxIntervalMinutes)
	}

	// time.Parse tolerates fractional seconds the layout does not mention.
	if len(lastRun.String) != len(models.LastRunLayout) {
		return models.JobStatusRecord{}, fmt.Errorf("%w: job %q lastrun %q does not match %s", ErrMalformedRecord, job, lastRun.String, models.LastRunLayout)
	}
	ts, err := time.Parse(models.LastRunLayout, lastRun.String)
	if err != nil {
		return models.JobStatusRecord{}, fmt.Errorf("%w: job %q lastrun %q: %v", ErrMalformedRecord, job, lastRun.String, err)
	}

	return models.JobStatusRecord{
		Job:        job,
		LastRun:    ts,
		Interval:   int(interval.Int64),
		LastStatus: lastStatus.String,
	}, nil
}
