// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

/*
Package mailer delivers transactional email for the account lifecycle.

The only message this service sends today is the registration OTP. Delivery
is a best-effort side effect: callers log failures but never fail the
enclosing flow, because the staged registration stays valid in the cache
and the client can re-register to receive a fresh code.
*/
package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Sender delivers account-lifecycle email.
type Sender interface {
	// SendOTP emails the one-time registration code to the given address.
	SendOTP(email, name, otp string) error
}

// # SMTP Sender

// SMTPSender implements [Sender] over an authenticated SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender constructs a gomail-backed sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendOTP emails the one-time registration code to the given address.
func (sender *SMTPSender) SendOTP(email, name, otp string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", sender.from)
	message.SetHeader("To", email)
	message.SetHeader("Subject", "Your Parlo verification code")

	body := fmt.Sprintf(`
		<h2>Welcome to Parlo, %s!</h2>
		<p>Your verification code is: <strong>%s</strong></p>
		<p>The code expires in 5 minutes. If you did not sign up, you can ignore this email.</p>
		<p>— The Parlo Team</p>
	`, name, otp)

	message.SetBody("text/html", body)

	if err := sender.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("mailer_send_otp_failed: %w", err)
	}

	return nil
}

// # Log Sender

// LogSender implements [Sender] by writing the code to the structured log.
//
// It is the default in development, where no SMTP relay is configured and
// the operator reads codes off the console.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendOTP logs the one-time code instead of emailing it.
func (sender *LogSender) SendOTP(email, name, otp string) error {
	sender.logger.Info("otp_email_suppressed",
		slog.String("email", email),
		slog.String("otp", otp),
	)
	return nil
}
