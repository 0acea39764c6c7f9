package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"taskflow/pkg/keymaps"
	"taskflow/pkg/reminder"
)

// Config holds the application configuration
type Config struct {
	Database string            `mapstructure:"database"`
	KeyMap   map[string]string `mapstructure:"keymap"`
	Reminder ReminderConfig    `mapstructure:"reminder"`
	Notifier NotifierConfig    `mapstructure:"notifier"`

	LightStyles Styles `mapstructure:"light_styles"`
	DarkStyles  Styles `mapstructure:"dark_styles"`
}

// ReminderConfig controls the reminder scheduler
type ReminderConfig struct {
	Email    string        `mapstructure:"email"`
	Interval time.Duration `mapstructure:"interval"`
	Window   time.Duration `mapstructure:"window"`
}

// NotifierConfig holds the email webhook settings
type NotifierConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	ServiceID  string        `mapstructure:"service_id"`
	TemplateID string        `mapstructure:"template_id"`
	UserID     string        `mapstructure:"user_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Desktop    bool          `mapstructure:"desktop"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `mapstructure:"border_color"`
	AccentColor string `mapstructure:"accent_color"`

	// Text colors
	NormalTextColor   string `mapstructure:"normal_text_color"`
	SelectedTextColor string `mapstructure:"selected_text_color"`
	SelectedBgColor   string `mapstructure:"selected_bg_color"`
	ErrorColor        string `mapstructure:"error_color"`

	// Task attribute colors
	CategoryColor string `mapstructure:"category_color"`
	TagColor      string `mapstructure:"tag_color"`
	UrgentColor   string `mapstructure:"urgent_color"`
}

// Palette returns the styles for the requested theme
func (c Config) Palette(dark bool) Styles {
	if dark {
		return c.DarkStyles
	}
	return c.LightStyles
}

// Dir returns the default configuration directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "taskflow"), nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database", filepath.Join(configDir, "taskflow.db"))
	v.SetDefault("keymap", keymaps.GetDefaultKeyMappings())

	v.SetDefault("reminder.email", "")
	v.SetDefault("reminder.interval", reminder.DefaultInterval.String())
	v.SetDefault("reminder.window", reminder.DefaultWindow.String())

	v.SetDefault("notifier.endpoint", "https://api.emailjs.com/api/v1.0/email/send")
	v.SetDefault("notifier.service_id", "service_taskflow")
	v.SetDefault("notifier.template_id", "template_reminder")
	v.SetDefault("notifier.user_id", "")
	v.SetDefault("notifier.timeout", "10s")
	v.SetDefault("notifier.desktop", true)

	// Default styles that match the light and dark themes
	v.SetDefault("light_styles", map[string]interface{}{
		"border_color":        "240",
		"accent_color":        "205",
		"normal_text_color":   "238",
		"selected_text_color": "229",
		"selected_bg_color":   "57",
		"error_color":         "9",
		"category_color":      "2",
		"tag_color":           "4",
		"urgent_color":        "196",
	})
	v.SetDefault("dark_styles", map[string]interface{}{
		"border_color":        "238",
		"accent_color":        "99",
		"normal_text_color":   "252",
		"selected_text_color": "230",
		"selected_bg_color":   "62",
		"error_color":         "203",
		"category_color":      "114",
		"tag_color":           "111",
		"urgent_color":        "203",
	})
}

// Load reads the configuration from configPath, or from the default location when empty.
// A missing file is created with default values.
func Load(configPath string) (Config, error) {
	configDir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	v := viper.New()
	setDefaults(v, configDir)
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}

		// Config file not found, create it with default values
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return Config{}, err
		}
		if err := v.WriteConfigAs(configPath); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Reminder.Interval <= 0 {
		cfg.Reminder.Interval = reminder.DefaultInterval
	}
	if cfg.Reminder.Window <= 0 {
		cfg.Reminder.Window = reminder.DefaultWindow
	}
	return cfg, nil
}
