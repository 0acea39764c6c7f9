package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger for debug messages
var (
	mu        sync.Mutex
	isVerbose = false
	logOut    io.Writer
	logFile   *os.File
)

// Log prints debug messages to the log file if verbose mode is enabled
func Log(text string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if isVerbose && logOut != nil {
		fmt.Fprintf(logOut, "%s "+text+"\n", append([]interface{}{time.Now().Format(time.RFC3339)}, args...)...)
	}
}

// InitLogger initializes the logging system
func InitLogger(verbose bool) {
	if !verbose {
		return
	}

	// Create log filename with current date
	logFileName := filepath.Join(os.TempDir(), fmt.Sprintf("taskflow_%s.log", time.Now().Format("2006-01-02")))

	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
		return
	}

	mu.Lock()
	isVerbose = true
	logFile = f
	logOut = f
	mu.Unlock()

	Log("Verbose logging enabled")
}

// SetOutput redirects verbose logging to w. Passing nil disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logOut = w
	isVerbose = w != nil
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logOut = nil
	isVerbose = false
}
