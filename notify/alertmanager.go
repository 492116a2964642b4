package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const alertName = "JobScannerReport"

// AlertmanagerNotifier posts the report as a single alert to the
// Alertmanager v2 API, which routes it to email, chat or paging.
type AlertmanagerNotifier struct {
	baseURL string
	env     string
	client  *http.Client
	now     func() time.Time
}

func NewAlertmanager(baseURL, env string, client *http.Client) *AlertmanagerNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &AlertmanagerNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		env:     env,
		client:  client,
		now:     time.Now,
	}
}

func (n *AlertmanagerNotifier) Name() string { return "alertmanager" }

type postableAlert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt"`
	EndsAt      *time.Time        `json:"endsAt,omitempty"`
}

func (n *AlertmanagerNotifier) Send(ctx context.Context, msg Message) error {
	if n.baseURL == "" {
		return fmt.Errorf("alertmanager: URL not set")
	}

	now := n.now().UTC()
	alert := postableAlert{
		Labels: map[string]string{
			"alertname": alertName,
			"severity":  "warning",
		},
		Annotations: map[string]string{
			"summary":     msg.Subject,
			"description": msg.Body,
		},
		StartsAt: now,
	}
	if n.env != "" {
		alert.Labels["env"] = n.env
	}
	// An all-clear report resolves any alert a previous run raised.
	if msg.Body == "" {
		alert.EndsAt = &now
	}

	payload, err := json.Marshal([]postableAlert{alert})
	if err != nil {
		return fmt.Errorf("alertmanager: failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/api/v2/alerts", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("alertmanager: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("alertmanager: failed to send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("alertmanager: API error: status %d", resp.StatusCode)
	}
	return nil
}
