// cmd/logging.go
package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/ColonelBlimp/morsetap/internal/config"
)

// configureLogger sends the standard logger to the log file so it does not
// draw over the terminal UI, or to stderr with --debug. The returned func
// closes the file.
func configureLogger(cfg *config.Settings) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cfg.Debug {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}
}
