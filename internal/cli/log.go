// Package cli implements the bracketview command-line interface.
//
// This package provides commands for resolving match lists into brackets,
// checking them for data-quality problems, laying them out and rendering
// them, browsing them in the terminal, and serving them over HTTP. The CLI
// is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - resolve: Print the two halves and the final, column by column
//   - check: Report duplicate ids, dangling next matches, cycles and the like
//   - layout: Write the board layout and connector lines as JSON
//   - render: Generate SVG, PNG, PDF, DOT or JSON artifacts
//   - find: Fuzzy-search the teams of a bracket
//   - view: Scroll a bracket interactively in the terminal
//   - serve: Run the HTTP API with live websocket updates
//   - cache: Manage the match, layout and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of one operation.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Checked 31 matches (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
