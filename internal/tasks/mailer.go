package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
)

// Mailer sends the emails produced by the task queue. Without SMTP
// configuration it logs the message instead of sending, which keeps
// development environments working without a mail server.
type Mailer struct {
	cfg *config.Config
}

// NewMailer returns a Mailer bound to the given configuration.
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// RegisterHandlers wires the mailer's task handlers into the queue.
func (m *Mailer) RegisterHandlers(q *Queue) {
	q.Register(TypeWelcomeEmail, m.HandleWelcomeEmail)
	q.Register(TypeVerificationEmail, m.HandleVerificationEmail)
}

// HandleWelcomeEmail sends the post-registration welcome message.
func (m *Mailer) HandleWelcomeEmail(ctx context.Context, task Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("invalid welcome email payload: %w", err)
	}

	subject := "Welcome to Inkwell"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account is ready. Happy writing!\r\n", payload.Name)
	return m.send(ctx, payload.Email, subject, body)
}

// HandleVerificationEmail confirms that an account has been verified.
func (m *Mailer) HandleVerificationEmail(ctx context.Context, task Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("invalid verification email payload: %w", err)
	}

	subject := "Your Inkwell account is verified"
	body := "Your email address has been verified. You now have full access to your account.\r\n"
	return m.send(ctx, payload.Email, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		middleware.Logger.InfoContext(ctx, "SMTP not configured, logging email instead",
			"to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.SMTPFromEmail, to, subject, body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.SMTPFromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
