package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskflow/pkg/reminder"
	"taskflow/pkg/utils"
)

// DefaultEndpoint is the EmailJS REST endpoint
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// ErrNotConfigured is returned when the notifier lacks service credentials
var ErrNotConfigured = errors.New("email notifier not configured")

// EmailConfig holds the EmailJS-style service settings
type EmailConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	UserID     string
	Timeout    time.Duration
}

// EmailNotifier delivers reminders by posting a template payload to an email webhook
type EmailNotifier struct {
	cfg    EmailConfig
	client *http.Client
	now    func() time.Time
}

type emailRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	ToEmail         string `json:"to_email"`
	TaskTitle       string `json:"task_title"`
	TaskDescription string `json:"task_description"`
	DueDate         string `json:"due_date"`
	Priority        string `json:"priority"`
	Category        string `json:"category"`
	ReminderTime    string `json:"reminder_time"`
}

// NewEmailNotifier creates a notifier. A zero Endpoint uses DefaultEndpoint.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &EmailNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
}

// Configured reports whether service credentials are present
func (n *EmailNotifier) Configured() bool {
	return n.cfg.ServiceID != "" && n.cfg.TemplateID != "" && n.cfg.UserID != ""
}

// Send posts the reminder and treats any non-2xx response as failure
func (n *EmailNotifier) Send(ctx context.Context, r reminder.Reminder) error {
	if !n.Configured() {
		return ErrNotConfigured
	}
	if r.RecipientEmail == "" {
		return fmt.Errorf("%w: no recipient email", ErrNotConfigured)
	}

	payload, err := json.Marshal(emailRequest{
		ServiceID:  n.cfg.ServiceID,
		TemplateID: n.cfg.TemplateID,
		UserID:     n.cfg.UserID,
		TemplateParams: templateParams{
			ToEmail:         r.RecipientEmail,
			TaskTitle:       r.Title,
			TaskDescription: r.Description,
			DueDate:         r.DueDate.Format(time.RFC3339),
			Priority:        string(r.Priority),
			Category:        r.Category,
			ReminderTime:    n.now().Format("2006-01-02 15:04:05"),
		},
	})
	if err != nil {
		return fmt.Errorf("encode reminder: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send reminder: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	utils.Log("Reminder email for %q accepted by %s", r.Title, n.cfg.Endpoint)
	return nil
}
