package utils

import (
	"fmt"
	"net/smtp"

	"emcon-server/internal/config"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	cfg config.MailerConfig
}

// NewMailer creates a Mailer from the SMTP configuration.
func NewMailer(cfg config.MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers a plain-text email to a single recipient.
func (m *Mailer) Send(toEmail, subject, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s", m.cfg.From, toEmail, subject, body)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	return smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{toEmail}, []byte(message))
}

// SendVerificationEmail sends the account verification link.
func (m *Mailer) SendVerificationEmail(toEmail, appURL, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/verify-email/%s", appURL, token)
	body := "Welcome to EMCON. Please verify your email address by opening the link below:\n\n" + link
	return m.Send(toEmail, "Verify your EMCON account", body)
}

// SendPasswordResetEmail sends the password reset link.
func (m *Mailer) SendPasswordResetEmail(toEmail, appURL, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", appURL, token)
	body := "A password reset was requested for your EMCON account. Open the link below to choose a new password:\n\n" + link
	return m.Send(toEmail, "Reset your EMCON password", body)
}
