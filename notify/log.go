package notify

import (
	"context"
	"log/slog"
	"strings"
)

// LogNotifier writes notifications using structured logging.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLog creates a log notifier. If logger is nil, the default logger is
// used.
func NewLog(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "notification",
		slog.String("from", msg.From),
		slog.String("to", strings.Join(msg.To, ",")),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}
