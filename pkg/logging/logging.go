package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

var logFile *os.File

/*
ToFile redirects the default logger to a file. The TUI owns the terminal
while a session runs, so log lines would otherwise tear the rendering.
*/
func ToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logFile = fh
	log.SetOutput(fh)
	log.Info("logging to file", "path", path)

	return nil
}

/*
Close flushes and releases the log file, restoring stderr output.
*/
func Close() {
	if logFile == nil {
		return
	}

	log.SetOutput(os.Stderr)
	logFile.Close()
	logFile = nil
}
