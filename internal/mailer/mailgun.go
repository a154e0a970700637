package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// MailgunMailer はMailgun経由でリセットメールを送る。
type MailgunMailer struct {
	domain string
	apiKey string
	sender string
}

func NewMailgunMailer(domain, apiKey, sender string) *MailgunMailer {
	return &MailgunMailer{domain: domain, apiKey: apiKey, sender: sender}
}

func (m *MailgunMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	client := mg.NewMailgun(m.domain, m.apiKey)

	subject := "Password reset"
	text := fmt.Sprintf("You requested a password reset. Open the link below within 1 hour:\n\n%s\n\nIf you did not request this, ignore this email.", resetURL)

	msg := client.NewMessage(m.sender, subject, text, to)

	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := client.Send(c, msg)
	return err
}
