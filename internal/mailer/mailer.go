package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer delivers the credential-setup notification to accounts provisioned
// by the payment webhook. Delivery failure is never fatal to the caller.
type Mailer interface {
	SendRecoveryLink(ctx context.Context, email, link string) error
}

type SMTPMailer struct {
	addr string
	from string
}

func NewSMTP(addr, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

func (m *SMTPMailer) SendRecoveryLink(_ context.Context, email, link string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Set up your reelstudio account\r\n\r\n"+
		"Your video credits are ready. Set a password to access your dashboard:\r\n\r\n%s\r\n",
		m.from, email, link)

	if err := smtp.SendMail(m.addr, nil, m.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send recovery mail: %w", err)
	}
	return nil
}

// LogMailer stands in when no SMTP relay is configured; the link still lands
// in the logs for manual delivery.
type LogMailer struct{}

func (LogMailer) SendRecoveryLink(_ context.Context, email, link string) error {
	slog.Info("recovery link issued", "email", email, "link", link)
	return nil
}
