// Package logging routes the standard logger to a file next to the
// executable. The dashboard owns the terminal, so nothing may log to stdout
// or stderr while the screen is up.
package logging

import (
	"log"
	"os"
	"path/filepath"
)

// Init opens battmon.log beside the executable and points the standard
// logger at it. Called once before the screen is initialized.
func Init() {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("Error getting executable path: %v", err)
	}
	logPath := filepath.Join(filepath.Dir(execPath), "battmon.log")

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Error opening log file: %v", err)
	}
	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

// Event records a noteworthy application action.
func Event(format string, v ...any) {
	log.Printf(format, v...)
}
