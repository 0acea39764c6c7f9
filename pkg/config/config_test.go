package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	path := filepath.Join(home, ".config", "taskflow", "config.json")
	assert.FileExists(t, path)

	assert.Equal(t, filepath.Join(home, ".config", "taskflow", "taskflow.db"), cfg.Database)
	assert.Equal(t, time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Reminder.Window)
	assert.Equal(t, 10*time.Second, cfg.Notifier.Timeout)
	assert.True(t, cfg.Notifier.Desktop)
	assert.Equal(t, "205", cfg.LightStyles.AccentColor)
	assert.Equal(t, "99", cfg.DarkStyles.AccentColor)
	assert.NotEmpty(t, cfg.KeyMap)
}

func TestLoadReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database": "/tmp/tasks.db",
		"reminder": {"email": "me@example.com", "interval": "2m"},
		"dark_styles": {"accent_color": "33"}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tasks.db", cfg.Database)
	assert.Equal(t, "me@example.com", cfg.Reminder.Email)
	assert.Equal(t, 2*time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Reminder.Window)
	assert.Equal(t, "33", cfg.Palette(true).AccentColor)
	assert.Equal(t, "238", cfg.Palette(true).BorderColor, "unset colors keep their defaults")
	assert.Equal(t, "205", cfg.Palette(false).AccentColor)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TASKFLOW_DATABASE", "postgres://localhost/tasks")
	t.Setenv("TASKFLOW_REMINDER_EMAIL", "ops@example.com")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/tasks", cfg.Database)
	assert.Equal(t, "ops@example.com", cfg.Reminder.Email)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
