package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grassfps/grassfps/internal/logging"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewLogger(logging.Config{Level: logging.Warn, Format: "json", Output: &buf}).With("component", "test")

	log.Debugf("hidden %d", 1)
	log.Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message should be filtered:\n%s", out)
	}
	if !strings.Contains(out, `"message":"shown 2"`) || !strings.Contains(out, `"component":"test"`) {
		t.Fatalf("expected warning with component field:\n%s", out)
	}
}

func TestNilLogger(t *testing.T) {
	var log *logging.Logger
	log.Infof("nothing happens")
	if log.With("a", "b") != nil {
		t.Fatal("expected nil child logger")
	}
}
