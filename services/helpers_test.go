package services

import (
	"context"
	"errors"

	"jobscanner/models"
	"jobscanner/notify"
)

// fakeStore serves fixed records and can fail for a named job.
type fakeStore struct {
	records map[string][]models.JobStatusRecord
	failOn  string
	calls   []string
}

func (f *fakeStore) GetStatus(_ context.Context, job string) ([]models.JobStatusRecord, error) {
	f.calls = append(f.calls, job)
	if job == f.failOn {
		return nil, errors.New("connection refused")
	}
	return f.records[job], nil
}

type recordingNotifier struct {
	name string
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}
