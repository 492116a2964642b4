package config

import "os"

// Env holds the settings that may come from the process environment. They
// are read independently of the config file so the fatal-notification path
// still has somewhere to send to when the file itself is unreadable.
type Env struct {
	ConfigPath      string
	DatabaseURL     string
	SendGridAPIKey  string
	SlackWebhookURL string
	AlertmanagerURL string
	AlertEmail      string
	SMTPAddr        string
}

func LoadEnv() Env {
	path := os.Getenv("SCANNER_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return Env{
		ConfigPath:      path,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		AlertmanagerURL: os.Getenv("ALERTMANAGER_URL"),
		AlertEmail:      os.Getenv("ALERT_EMAIL"),
		SMTPAddr:        os.Getenv("SMTP_ADDR"),
	}
}

// ApplyEnv fills keys the config file left empty.
func (c *Config) ApplyEnv(env Env) {
	if c.StatusStore == "" {
		c.StatusStore = env.DatabaseURL
	}
	if c.SlackWebhookURL == "" {
		c.SlackWebhookURL = env.SlackWebhookURL
	}
	if c.AlertmanagerURL == "" {
		c.AlertmanagerURL = env.AlertmanagerURL
	}
	if c.SMTPAddr == "" {
		c.SMTPAddr = env.SMTPAddr
	}
	if c.SMTPAddr == "" {
		c.SMTPAddr = DefaultSMTPAddr
	}
	c.SendGridAPIKey = env.SendGridAPIKey
	if c.EmailFrom == "" {
		c.EmailFrom = env.AlertEmail
	}
	if c.EmailTo == "" {
		c.EmailTo = env.AlertEmail
	}
}

// Fallback is the configuration used for the fatal notification when the
// config file could not be loaded at all.
func Fallback(env Env) *Config {
	cfg := Default()
	cfg.ApplyEnv(env)
	return cfg
}
