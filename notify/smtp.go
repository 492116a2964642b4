package notify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPNotifier hands mail straight to a relay. It has no dependency on any
// alerting service, which makes it the default channel for scanner failures.
type SMTPNotifier struct {
	addr    string
	timeout time.Duration
	now     func() time.Time
}

// NewSMTP creates a notifier for the relay at addr (host:port). timeout bounds
// the dial and every read or write on the connection.
func NewSMTP(addr string, timeout time.Duration) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, timeout: timeout, now: time.Now}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if msg.From == "" || len(msg.To) == 0 {
		return fmt.Errorf("smtp: sender and at least one recipient are required")
	}

	m, err := n.buildMessage(msg)
	if err != nil {
		return err
	}
	client, err := n.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp: failed to send via %s: %w", n.addr, err)
	}
	return nil
}

func (n *SMTPNotifier) client() (*mail.Client, error) {
	host, portStr, err := net.SplitHostPort(n.addr)
	if err != nil {
		return nil, fmt.Errorf("smtp: invalid relay address %q: %w", n.addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("smtp: invalid relay port %q: %w", portStr, err)
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithTimeout(n.timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(n.dial),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp: failed to create client: %w", err)
	}
	return client, nil
}

// dial sets a deadline on the connection so a relay that accepts and then
// stalls cannot block past the context deadline or the configured timeout.
func (n *SMTPNotifier) dial(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(n.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (n *SMTPNotifier) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("smtp: invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("smtp: invalid recipients %q: %w", strings.Join(msg.To, ","), err)
	}
	m.Subject(sanitizeHeader(msg.Subject))
	m.SetDateWithValue(n.now())
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
