package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/reminder"
	"taskflow/pkg/task"
)

func testReminder() reminder.Reminder {
	return reminder.Reminder{
		TaskID:         "t1",
		Title:          "Submit taxes",
		Description:    "before noon",
		DueDate:        time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC),
		Priority:       task.PriorityUrgent,
		Category:       "Finance",
		RecipientEmail: "me@example.com",
	}
}

func TestEmailNotifierPostsTemplatePayload(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewEmailNotifier(EmailConfig{
		Endpoint:   srv.URL,
		ServiceID:  "svc",
		TemplateID: "tpl",
		UserID:     "user",
	})
	n.now = func() time.Time { return time.Date(2025, 4, 15, 11, 40, 0, 0, time.UTC) }

	require.NoError(t, n.Send(context.Background(), testReminder()))

	assert.Equal(t, "svc", got["service_id"])
	assert.Equal(t, "tpl", got["template_id"])
	assert.Equal(t, "user", got["user_id"])

	params, ok := got["template_params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "me@example.com", params["to_email"])
	assert.Equal(t, "Submit taxes", params["task_title"])
	assert.Equal(t, "before noon", params["task_description"])
	assert.Equal(t, "2025-04-15T12:00:00Z", params["due_date"])
	assert.Equal(t, "urgent", params["priority"])
	assert.Equal(t, "Finance", params["category"])
	assert.Equal(t, "2025-04-15 11:40:00", params["reminder_time"])
}

func TestEmailNotifierNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewEmailNotifier(EmailConfig{Endpoint: srv.URL, ServiceID: "svc", TemplateID: "tpl", UserID: "user"})
	err := n.Send(context.Background(), testReminder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmailNotifierRequiresConfiguration(t *testing.T) {
	n := NewEmailNotifier(EmailConfig{})
	assert.False(t, n.Configured())
	assert.True(t, errors.Is(n.Send(context.Background(), testReminder()), ErrNotConfigured))

	n = NewEmailNotifier(EmailConfig{ServiceID: "svc", TemplateID: "tpl", UserID: "user"})
	assert.True(t, n.Configured())
	r := testReminder()
	r.RecipientEmail = ""
	assert.True(t, errors.Is(n.Send(context.Background(), r), ErrNotConfigured))
}

func TestEmailNotifierHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	n := NewEmailNotifier(EmailConfig{Endpoint: srv.URL, ServiceID: "svc", TemplateID: "tpl", UserID: "user"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, n.Send(ctx, testReminder()))
}

func TestEmailNotifierSatisfiesScheduler(t *testing.T) {
	var _ reminder.Notifier = NewEmailNotifier(EmailConfig{})
	var _ reminder.DesktopNotifier = NewDesktop(false)
}
