// Package service holds outbound integrations: SMTP mail, Google Calendar
// and OpenAI categorization.
package service

import (
	"fmt"

	"github.com/martijnhiemstra/selfsuffient/internal/config"

	gomail "gopkg.in/gomail.v2"
)

// EmailSender delivers application mail over SMTP with implicit SSL.
type EmailSender struct {
	smtp config.SMTPConfig
	app  config.AppConfig
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{smtp: cfg.SMTP, app: cfg.App}
}

// Enabled reports whether SMTP is configured at all. When it is not,
// callers skip sending instead of failing.
func (s *EmailSender) Enabled() bool {
	return s.smtp.Host != "" && s.smtp.FromEmail != ""
}

func (s *EmailSender) send(to, subject, htmlBody string) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.smtp.FromEmail, s.smtp.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.User, s.smtp.Password)
	d.SSL = s.smtp.Port == 465

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendPasswordReset sends the reset link for a requested password reset.
func (s *EmailSender) SendPasswordReset(to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.app.URL, token)
	body := fmt.Sprintf(`
		<h2>Password reset</h2>
		<p>A password reset was requested for your %s account.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>The link is valid for one hour. If you did not request this, you can ignore this email.</p>`,
		s.app.Name, link)
	return s.send(to, fmt.Sprintf("%s password reset", s.app.Name), body)
}

// SendDailyReminder sends the pre-rendered daily digest.
func (s *EmailSender) SendDailyReminder(to, htmlBody string) error {
	return s.send(to, fmt.Sprintf("%s daily reminder", s.app.Name), htmlBody)
}

// SendTest sends a throwaway message so users can verify their SMTP setup.
func (s *EmailSender) SendTest(to string) error {
	body := fmt.Sprintf("<p>This is a test email from %s. Your email settings work.</p>", s.app.Name)
	return s.send(to, fmt.Sprintf("%s test email", s.app.Name), body)
}
