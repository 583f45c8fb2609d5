package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/matzehuels/bracketview/pkg/observability"
)

func TestCLILogLevel(t *testing.T) {
	t.Cleanup(observability.Reset)
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("resolving", "matches", 7)
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("resolving", "matches", 7)
	if !strings.Contains(buf.String(), "matches=7") {
		t.Errorf("debug output = %q, want key/value matches=7", buf.String())
	}
}

func TestLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("ready")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("log line %q does not start with an HH:MM:SS.cc timestamp", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.done("Checked 3 matches")

	if !regexp.MustCompile(`Checked 3 matches \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("done() output = %q, want message followed by elapsed time", buf.String())
	}
}
