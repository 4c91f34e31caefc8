// Package service contains the collaborators the handlers talk to that are
// not part of the database
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const verificationSubject = "Verify your email"

// Notifier delivers the email verification link to a freshly registered user
type Notifier interface {
	SendVerificationLink(ctx context.Context, email, link string) error
}

type MailOpts struct {
	Driver       string // log, smtp or resend
	From         string
	Host         string
	Port         int
	Username     string
	Password     string
	ResendAPIKey string
}

func NewNotifier(o MailOpts) (Notifier, error) {
	switch o.Driver {
	case "", "log":
		return LogNotifier{}, nil
	case "smtp":
		if o.Host == "" || o.Port <= 0 {
			return nil, errors.New("smtp host and port are required")
		}

		username := o.Username
		if username == "" {
			username = o.From
		}

		return &SMTPNotifier{
			from:   o.From,
			dialer: gomail.NewDialer(o.Host, o.Port, username, o.Password),
		}, nil
	case "resend":
		if o.ResendAPIKey == "" {
			return nil, errors.New("resend api key is required")
		}

		return &ResendNotifier{
			from:   o.From,
			client: resend.NewClient(o.ResendAPIKey),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mail driver %q", o.Driver)
	}
}

// LogNotifier writes the link to the log instead of sending it. Meant for
// local development only.
type LogNotifier struct{}

func (LogNotifier) SendVerificationLink(_ context.Context, email, link string) error {
	zap.L().Info("Verification email (log mode)", zap.String("to", email), zap.String("link", link))
	return nil
}

type SMTPNotifier struct {
	from   string
	dialer *gomail.Dialer
}

func (n *SMTPNotifier) SendVerificationLink(_ context.Context, email, link string) error {
	if email == n.from {
		return errors.New("invalid email address")
	}

	if err := n.dialer.DialAndSend(verificationMessage(n.from, email, link)); err != nil {
		return fmt.Errorf("failed to send verification email, %w", err)
	}

	return nil
}

type ResendNotifier struct {
	from   string
	client *resend.Client
}

func (n *ResendNotifier) SendVerificationLink(ctx context.Context, email, link string) error {
	_, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: verificationSubject,
		Text:    verificationBody(link),
	})
	if err != nil {
		return fmt.Errorf("failed to send verification email, %w", err)
	}

	return nil
}

func verificationMessage(from, to, link string) *gomail.Message {
	m := gomail.NewMessage()

	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", verificationSubject)
	m.SetBody("text/plain", verificationBody(link))

	return m
}

func verificationBody(link string) string {
	return fmt.Sprintf("Click the following link to verify your email: %s\n\nThis link will expire in 1 hour", link)
}
