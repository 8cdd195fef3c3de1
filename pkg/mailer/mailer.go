package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mokolo-market/mokolo-backend/pkg/config"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

var errLoggerRequired = errors.New("mailer logger is required")

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

type smtpSender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends transactional email over SMTP. When SMTP is not configured it
// logs and drops the message instead of failing the caller; notification mail
// is best-effort across the platform.
type Mailer struct {
	cfg    config.MailConfig
	send   smtpSender
	logger *logger.Logger
}

// New builds an SMTP mailer from config.
func New(cfg config.MailConfig, logg *logger.Logger) (*Mailer, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Mailer{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logg,
	}, nil
}

// Send delivers the message, or drops it when outbound mail is disabled.
// Delivery failures are logged and swallowed.
func (m *Mailer) Send(ctx context.Context, msg Message) {
	if len(msg.To) == 0 {
		return
	}
	ctx = m.logger.WithFields(ctx, map[string]any{
		"mail_to":      strings.Join(msg.To, ","),
		"mail_subject": msg.Subject,
	})

	if !m.cfg.Enabled() {
		m.logger.Info(ctx, "outbound mail disabled, dropping message")
		return
	}

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		host := m.cfg.SMTPAddr
		if idx := strings.LastIndex(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, host)
	}

	payload := buildPayload(m.cfg.DefaultFrom, msg)
	if err := m.send(m.cfg.SMTPAddr, auth, m.cfg.DefaultFrom, msg.To, payload); err != nil {
		m.logger.Error(ctx, "sending mail failed", err)
		return
	}
	m.logger.Info(ctx, "mail sent")
}

// NotifySupport sends a message to the configured support inbox.
func (m *Mailer) NotifySupport(ctx context.Context, subject, body string) {
	if m.cfg.SupportTo == "" {
		return
	}
	m.Send(ctx, Message{To: []string{m.cfg.SupportTo}, Subject: subject, Body: body})
}

func buildPayload(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
