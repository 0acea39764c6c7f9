package notify

import (
	"errors"
	"os/exec"
)

// ErrDesktopUnavailable is returned when desktop notifications are disabled or unsupported
var ErrDesktopUnavailable = errors.New("desktop notifications unavailable")

// Desktop shows notifications through notify-send
type Desktop struct {
	enabled  bool
	lookPath func(string) (string, error)
	run      func(name string, args ...string) error
}

// NewDesktop returns a desktop notifier. Disabled notifiers never show anything.
func NewDesktop(enabled bool) *Desktop {
	return &Desktop{
		enabled:  enabled,
		lookPath: exec.LookPath,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Notify shows the notification if enabled and notify-send is installed
func (d *Desktop) Notify(title, body string) error {
	if !d.enabled {
		return ErrDesktopUnavailable
	}
	bin, err := d.lookPath("notify-send")
	if err != nil {
		return ErrDesktopUnavailable
	}
	return d.run(bin, "--app-name=taskflow", title, body)
}
