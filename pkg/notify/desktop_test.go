package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopDisabled(t *testing.T) {
	d := NewDesktop(false)
	d.run = func(string, ...string) error {
		t.Fatal("disabled notifier must not run anything")
		return nil
	}
	assert.ErrorIs(t, d.Notify("title", "body"), ErrDesktopUnavailable)
}

func TestDesktopMissingBinary(t *testing.T) {
	d := NewDesktop(true)
	d.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	assert.ErrorIs(t, d.Notify("title", "body"), ErrDesktopUnavailable)
}

func TestDesktopRunsNotifySend(t *testing.T) {
	var gotName string
	var gotArgs []string

	d := NewDesktop(true)
	d.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	d.run = func(name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	require.NoError(t, d.Notify("Task Reminder: Pay rent", "Due in 30 minutes - landlord"))
	assert.Equal(t, "/usr/bin/notify-send", gotName)
	assert.Equal(t, []string{"--app-name=taskflow", "Task Reminder: Pay rent", "Due in 30 minutes - landlord"}, gotArgs)
}
