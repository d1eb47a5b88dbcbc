package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerFormat(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(NewHandler(&out, nil))
	logger.Info("event processed", "module", "main", "event", 7)

	line := out.String()
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "\n") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "INFO [main] event processed event=7") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestHandlerLevelAndAttrs(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(NewHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger.Info("hidden")
	if out.Len() != 0 {
		t.Fatalf("info written below the level: %q", out.String())
	}

	logger.With("module", "writer").WithGroup("file").Warn("slow", "ms", 12)
	if line := out.String(); !strings.Contains(line, "WARN [writer] slow file.ms=12") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := New(&out, &errOut, slog.LevelDebug)
	logger.Info("reading configuration", "config")
	logger.Error("cannot open file")

	if !strings.Contains(out.String(), "[config] reading configuration") {
		t.Fatalf("unexpected info output %q", out.String())
	}
	var record map[string]interface{}
	if err := json.Unmarshal(errOut.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if record["msg"] != "cannot open file" || record["level"] != "ERROR" {
		t.Fatalf("unexpected error record %v", record)
	}
}
