package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"net/url"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeVerificationEmail is the task type for account verification emails.
	TaskTypeVerificationEmail = "mail:verification"
)

// VerificationEmailPayload describes a queued verification email.
type VerificationEmailPayload struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// NewVerificationEmailTask constructs an Asynq task.
func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeVerificationEmail, data), nil
}

// Mailer delivers emails over SMTP.
type Mailer struct {
	Host string
	Port int
	From string
}

// Send delivers a plain-text email.
func (m Mailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return smtp.SendMail(addr, nil, m.From, []string{to}, []byte(msg))
}

// VerificationEmailBody renders the verification email for the given link.
func VerificationEmailBody(username, link string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nThanks for registering! Please verify your email address:\n\n%s\n\nThis link expires in 24 hours. If you didn't register, ignore this email.\n",
		username, link)
}

// VerificationLink builds the frontend confirmation URL carrying the token.
func VerificationLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", frontendURL, url.QueryEscape(token))
}

// NewVerificationEmailHandler returns the Asynq handler processing
// TaskTypeVerificationEmail tasks.
func NewVerificationEmailHandler(mailer Mailer, frontendURL string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload VerificationEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		link := VerificationLink(frontendURL, payload.Token)
		body := VerificationEmailBody(payload.Username, link)
		if err := mailer.Send(payload.To, "Verify your Price Optimization Tool account", body); err != nil {
			return fmt.Errorf("jobs: send verification email: %w", err)
		}
		if logger != nil {
			logger.Info("verification email sent", slog.String("to", payload.To))
		}
		return nil
	}
}
