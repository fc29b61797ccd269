// Package logging provides the engine's debug loggers. Logging is off by
// default; set DRIFTSCAN_DEBUG to enable it, optionally to a file path
// (any other non-empty value logs to driftscan-debug.log in the working
// directory). Progress delivery never depends on logging being on.
package logging

import (
	"io"
	"log"
	"os"
)

var (
	// Engine logs scan lifecycle transitions.
	Engine *log.Logger
	// Walker logs traversal-level detail.
	Walker *log.Logger
	// Enabled reports whether debug logging is active.
	Enabled bool
)

func init() {
	dest := os.Getenv("DRIFTSCAN_DEBUG")
	if dest == "" {
		Engine = log.New(io.Discard, "", 0)
		Walker = log.New(io.Discard, "", 0)
		return
	}

	Enabled = true

	path := dest
	if dest == "1" || dest == "true" {
		path = "driftscan-debug.log"
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fall back to stderr rather than losing the output.
		Engine = log.New(os.Stderr, "[engine] ", log.Ldate|log.Ltime)
		Walker = log.New(os.Stderr, "[walker] ", log.Ldate|log.Ltime)
		return
	}

	Engine = log.New(f, "[engine] ", log.Lmicroseconds)
	Walker = log.New(f, "[walker] ", log.Lmicroseconds)
}
