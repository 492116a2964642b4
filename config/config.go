package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath          = "config.yaml"
	DefaultEMSFileLimit  = 20.0
	DefaultLogFile       = "./log/scanner.log"
	DefaultNotifier      = "smtp"
	DefaultSMTPAddr      = "localhost:25"
	DefaultNotifyTimeout = 10 * time.Second
)

// Notifier names accepted by the notifier and fatal-notifier keys.
const (
	NotifierSMTP         = "smtp"
	NotifierSendGrid     = "sendgrid"
	NotifierSlack        = "slack"
	NotifierAlertmanager = "alertmanager"
	NotifierLog          = "log"
)

// Config is built once per run and passed to the evaluators.
type Config struct {
	Env          string   `yaml:"env"`
	EmailSubject string   `yaml:"email_subject"`
	EmailFrom    string   `yaml:"email-from"`
	EmailTo      string   `yaml:"email-to"`
	EMSFiles     []string `yaml:"ems-files"`
	EMSFileLimit float64  `yaml:"ems-file-limit"`
	Jobs         []string `yaml:"jobs"`

	StatusStore     string        `yaml:"status-store"`
	Notifier        string        `yaml:"notifier"`
	FatalNotifier   string        `yaml:"fatal-notifier"`
	SMTPAddr        string        `yaml:"smtp-addr"`
	SlackWebhookURL string        `yaml:"slack-webhook-url"`
	AlertmanagerURL string        `yaml:"alertmanager-url"`
	SendGridAPIKey  string        `yaml:"-"`
	NotifyTimeout   time.Duration `yaml:"notify-timeout"`
	MetricsTextfile string        `yaml:"metrics-textfile"`

	Log LogConfig `yaml:",inline"`
}

type LogConfig struct {
	File       string `yaml:"log-file"`
	MaxSizeMB  int    `yaml:"log-max-size-mb"`
	MaxBackups int    `yaml:"log-max-backups"`
	Level      string `yaml:"log-level"`
}

// Default returns a Config with only the documented defaults set.
func Default() *Config {
	return &Config{
		EMSFileLimit:  DefaultEMSFileLimit,
		Notifier:      DefaultNotifier,
		FatalNotifier: DefaultNotifier,
		NotifyTimeout: DefaultNotifyTimeout,
		Log: LogConfig{
			File:       DefaultLogFile,
			MaxSizeMB:  1,
			MaxBackups: 2,
			Level:      "info",
		},
	}
}

// Load reads configuration from a file path, applies env and validates the
// result. When only validation fails the parsed config is returned alongside
// the error so the caller can still address a failure alert.
func Load(path string, env Env) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.ApplyEnv(env)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of the defaults. Multiple documents are
// applied in order, so a key in a later document overrides an earlier one.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode YAML document: %w", err)
		}
		if len(node.Content) == 0 {
			continue
		}
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.EMSFileLimit < 0 {
		return fmt.Errorf("config error: ems-file-limit must not be negative, got %v", c.EMSFileLimit)
	}
	if len(c.Jobs) > 0 && c.StatusStore == "" {
		return fmt.Errorf("config error: jobs are configured but no status-store (or DATABASE_URL) is set")
	}

	switch c.Notifier {
	case NotifierSMTP, NotifierSendGrid, NotifierSlack, NotifierAlertmanager, NotifierLog:
	default:
		return fmt.Errorf("config error: unknown notifier %q", c.Notifier)
	}

	// The fatal path must not go through an alert-routing service that may be
	// the very thing that is down.
	switch c.FatalNotifier {
	case NotifierSMTP, NotifierSendGrid, NotifierLog:
	case NotifierSlack, NotifierAlertmanager:
		return fmt.Errorf("config error: fatal-notifier %q is not allowed, use smtp, sendgrid or log", c.FatalNotifier)
	default:
		return fmt.Errorf("config error: unknown fatal-notifier %q", c.FatalNotifier)
	}

	if c.Notifier == NotifierSlack && c.SlackWebhookURL == "" {
		return fmt.Errorf("config error: notifier is slack but no slack-webhook-url (or SLACK_WEBHOOK_URL) is set")
	}
	if c.Notifier == NotifierAlertmanager && c.AlertmanagerURL == "" {
		return fmt.Errorf("config error: notifier is alertmanager but no alertmanager-url (or ALERTMANAGER_URL) is set")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("config error: notify-timeout must be positive, got %s", c.NotifyTimeout)
	}
	return nil
}

// Recipients splits email-to on commas.
func (c *Config) Recipients() []string {
	return splitAddresses(c.EmailTo)
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
