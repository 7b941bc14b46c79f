// Package notify delivers the generated summary by e-mail.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"slackdigest/internal/render"
)

// SMTPConfig holds the outgoing mail settings. Delivery is skipped when
// Host, Port or To is empty.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	To       []string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends HTML-rendered markdown over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	send   sendFunc
	logger *zap.Logger
}

// NewMailer constructs a Mailer.
func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail, logger: logger}
}

// Enabled reports whether enough settings are present to send mail.
func (m *Mailer) Enabled() bool {
	return len(m.cfg.To) > 0 && m.cfg.Host != "" && m.cfg.Port != ""
}

// Send renders body as HTML and mails it to the configured recipients.
func (m *Mailer) Send(subject, body string) error {
	if len(m.cfg.To) == 0 {
		m.logger.Info("No email recipients configured, skipping email send")
		return nil
	}
	if m.cfg.Host == "" || m.cfg.Port == "" {
		m.logger.Info("SMTP configuration not provided, skipping email send")
		return nil
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, m.cfg.To, subject, render.Document(subject, render.MarkdownToHTML(body)))
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, m.cfg.To, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Email sent successfully", zap.Strings("recipients", m.cfg.To))
	return nil
}

func buildMessage(from string, to []string, subject, htmlBody string) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ", ")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var sb strings.Builder
	for _, h := range headers {
		sb.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)
	return []byte(sb.String())
}
