package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a single email.
type Sender interface {
	Deliver(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers mail over plain SMTP. Works against Mailpit in
// development and a relay in production.
type SMTPSender struct {
	addr     string
	from     string
	username string
	password string
	host     string
}

// NewSMTPSender constructs an SMTPSender. Empty username disables AUTH.
func NewSMTPSender(addr, from, username, password string) *SMTPSender {
	host := addr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		host = addr[:i]
	}
	return &SMTPSender{addr: addr, from: from, username: username, password: password, host: host}
}

func (s *SMTPSender) Deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", s.from, to, subject, body)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("jobs: send mail: %w", err)
	}
	return nil
}
