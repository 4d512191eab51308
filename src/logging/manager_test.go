package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xmledit/src/config"
	"xmledit/src/events"
	"xmledit/src/logging"
)

func writeSource(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "demo.xml")
	if err := os.WriteFile(file, []byte("<a>1</a>\n"), 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
	return file
}

func TestManagerLoggingFlow(t *testing.T) {
	file := writeSource(t)
	mgr := logging.NewManager(nil)
	if err := mgr.Enable(file); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	mgr.Handle(events.Event{
		Type:      events.EventCommandExecuted,
		Command:   "set",
		Raw:       "set /a \"2\"",
		File:      file,
		Timestamp: time.Now(),
	})
	mgr.Handle(events.Event{
		Type:      events.EventValueChanged,
		File:      file,
		Timestamp: time.Now(),
		Metadata: map[string]string{
			events.MetaPath:     "/a",
			events.MetaOldValue: "1",
			events.MetaNewValue: "2",
		},
	})
	content, err := mgr.Show(file)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(content, "set /a \"2\"") {
		t.Fatalf("log missing command, content: %s", content)
	}
	if !strings.Contains(content, `set /a: "1" -> "2"`) {
		t.Fatalf("log missing value change, content: %s", content)
	}
	if len(mgr.ActivePaths()) != 1 {
		t.Fatalf("expected one active path")
	}
}

func TestManagerIgnoresDisabledFiles(t *testing.T) {
	file := writeSource(t)
	mgr := logging.NewManager(nil)
	mgr.Handle(events.Event{Type: events.EventCommandExecuted, Raw: "get /a", File: file, Timestamp: time.Now()})

	logPath, err := logging.LogFilePath(file)
	if err != nil {
		t.Fatalf("log path failed: %v", err)
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Fatalf("no log file expected, stat err: %v", err)
	}
	if filepath.Base(logPath) != ".demo.xml.log" {
		t.Fatalf("unexpected log file name: %s", logPath)
	}
	if _, err := mgr.Show(file); !errors.Is(err, logging.ErrNoLog) {
		t.Fatalf("show without a log should fail with ErrNoLog, got %v", err)
	}
}

func TestManagerEnableDisable(t *testing.T) {
	file := writeSource(t)
	mgr := logging.NewManager(nil)
	if err := mgr.Enable(file); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if !mgr.Enabled(file) {
		t.Fatalf("file should be enabled")
	}
	if err := mgr.Disable(file); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if len(mgr.ActivePaths()) != 0 {
		t.Fatalf("should have no active paths after disable")
	}
}

func TestManagerSessionStartWrittenOnce(t *testing.T) {
	file := writeSource(t)
	mgr := logging.NewManager(nil)
	for i := 0; i < 2; i++ {
		if err := mgr.Enable(file); err != nil {
			t.Fatalf("enable failed: %v", err)
		}
	}
	content, err := mgr.Show(file)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if strings.Count(content, "session start at") != 1 {
		t.Fatalf("expected a single session header, content: %s", content)
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(config.Log{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "file", "a.xml")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %q", buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("record is not json: %v", err)
	}
	if record["msg"] != "shown" || record["file"] != "a.xml" {
		t.Fatalf("unexpected record: %v", record)
	}

	buf.Reset()
	logging.NewLogger(config.Log{Level: "bogus", Format: "text"}, &buf).Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Fatalf("text handler output missing message: %q", buf.String())
	}
}
