package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

// captureLogOutputWithInit captures output through SetOutput and InitLogger,
// so the real handler options are exercised.
func captureLogOutputWithInit(level Level, format Format, f func()) string {
	var buf bytes.Buffer
	SetOutput(&buf)
	InitLogger(level, format)

	f()

	SetOutput(os.Stderr)
	InitLogger(LevelInfo, FormatText)
	return buf.String()
}

// decodeRecord parses a single JSON log line.
func decodeRecord(t *testing.T, output string) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &rec); err != nil {
		t.Fatalf("log output %q is not one JSON record: %v", output, err)
	}
	return rec
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"Debug level JSON format", LevelDebug, FormatJSON},
		{"Warn level JSON format", LevelWarn, FormatJSON},
		{"Info level Text format", LevelInfo, FormatText},
		{"Default level (invalid value)", Level(999), FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Error("Expected logger to be initialized")
			}
		})
	}
	InitLogger(LevelInfo, FormatText)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, error %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

// TestLevelFiltering verifies records below the configured level are dropped.
func TestLevelFiltering(t *testing.T) {
	output := captureLogOutputWithInit(LevelWarn, FormatText, func() {
		Info("quiet")
		Warn("loud")
	})
	if strings.Contains(output, "quiet") {
		t.Error("Expected info record to be filtered at warn level")
	}
	if !strings.Contains(output, "loud") {
		t.Error("Expected warn record in output")
	}
}

func TestOperationID(t *testing.T) {
	ctx := WithOperationID(context.Background(), "op-42")
	if got := GetOperationID(ctx); got != "op-42" {
		t.Errorf("Expected operation ID op-42, got %s", got)
	}
	if got := GetOperationID(context.Background()); got != "" {
		t.Errorf("Expected empty operation ID, got %s", got)
	}
	wrongType := context.WithValue(context.Background(), OperationIDKey, 7)
	if got := GetOperationID(wrongType); got != "" {
		t.Errorf("Expected empty operation ID for wrong type, got %s", got)
	}

	output := captureLogOutput(func() {
		InfoContext(ctx, "with id")
		ErrorContext(context.Background(), "without id")
	})
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "op-42") {
		t.Error("Expected first record to carry the operation ID")
	}
	if strings.Contains(lines[1], "operation_id") {
		t.Error("Expected second record without operation ID")
	}
}

func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name  string
		fn    func()
		level string
	}{
		{"Debug", func() { Debug("debug message", "key", "value") }, "DEBUG"},
		{"Info", func() { Info("info message", "key", "value") }, "INFO"},
		{"Warn", func() { Warn("warning message", "key", "value") }, "WARN"},
		{"Error", func() { Error("error message", "key", "value") }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeRecord(t, captureLogOutput(tt.fn))
			if rec["level"] != tt.level {
				t.Errorf("Expected level %s, got %v", tt.level, rec["level"])
			}
			if rec["key"] != "value" {
				t.Errorf("Expected key=value, got %v", rec["key"])
			}
		})
	}
}

// TestDomainHelpers verifies each helper emits its message and fixed fields
// before any extra arguments.
func TestDomainHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fn     func()
		msg    string
		fields map[string]any
	}{
		{
			name:   "ShowLoaded",
			fn:     func() { ShowLoaded("a.shw", "3.6", 4, 2, "extra", "x") },
			msg:    "show_loaded",
			fields: map[string]any{"source": "a.shw", "version": "3.6", "points": 4.0, "sheets": 2.0, "extra": "x"},
		},
		{
			name:   "ShowSaved",
			fn:     func() { ShowSaved("b.shw", 120) },
			msg:    "show_saved",
			fields: map[string]any{"sink": "b.shw", "bytes": 120.0},
		},
		{
			name:   "FormatWarning",
			fn:     func() { FormatWarning("newer_version", "version", "3.9") },
			msg:    "format_warning",
			fields: map[string]any{"event": "newer_version", "version": "3.9"},
		},
		{
			name:   "ParseFailure",
			fn:     func() { ParseFailure("c.shw", errors.New("truncated")) },
			msg:    "parse_failure",
			fields: map[string]any{"source": "c.shw", "error": "truncated"},
		},
		{
			name:   "CommandApplied",
			fn:     func() { CommandApplied("move_points", "sheet_content", 3) },
			msg:    "command_applied",
			fields: map[string]any{"command": "move_points", "scope": "sheet_content", "depth": 3.0},
		},
		{
			name:   "CommandReverted",
			fn:     func() { CommandReverted("set_selection", "selection", 2) },
			msg:    "command_reverted",
			fields: map[string]any{"command": "set_selection", "depth": 2.0},
		},
		{
			name:   "SnapshotStored",
			fn:     func() { SnapshotStored("aa", "bb", 64) },
			msg:    "snapshot_stored",
			fields: map[string]any{"sha256": "aa", "blake3": "bb", "size": 64.0},
		},
		{
			name: "CatalogOperation",
			fn: func() {
				CatalogOperation(WithOperationID(context.Background(), "op-1"), "register", "id-9")
			},
			msg:    "catalog_operation",
			fields: map[string]any{"operation": "register", "id": "id-9", "operation_id": "op-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeRecord(t, captureLogOutput(tt.fn))
			if rec["msg"] != tt.msg {
				t.Errorf("Expected msg %s, got %v", tt.msg, rec["msg"])
			}
			for k, want := range tt.fields {
				if rec[k] != want {
					t.Errorf("Expected %s=%v, got %v", k, want, rec[k])
				}
			}
		})
	}
}

func TestReplaceAttrTimestamp(t *testing.T) {
	output := captureLogOutputWithInit(LevelInfo, FormatJSON, func() {
		Info("timestamp test")
	})
	rec := decodeRecord(t, output)
	ts, ok := rec["time"].(string)
	if !ok || !strings.Contains(ts, "T") {
		t.Errorf("Expected RFC3339 timestamp, got %v", rec["time"])
	}
	if strings.Contains(ts, ".") {
		t.Errorf("Expected timestamp without fractional seconds, got %s", ts)
	}
}

func TestSetOutputKeepsFormat(t *testing.T) {
	InitLogger(LevelInfo, FormatJSON)
	var buf bytes.Buffer
	SetOutput(&buf)
	Info("json after redirect")
	SetOutput(os.Stderr)
	InitLogger(LevelInfo, FormatText)

	decodeRecord(t, buf.String())
}

func TestInit(t *testing.T) {
	if defaultLogger == nil {
		t.Error("Expected defaultLogger to be initialized by init()")
	}
}

func TestLevelConstants(t *testing.T) {
	if LevelDebug >= LevelInfo || LevelInfo >= LevelWarn || LevelWarn >= LevelError {
		t.Error("Expected levels in increasing order")
	}
	if FormatJSON == FormatText {
		t.Error("Expected FormatJSON != FormatText")
	}
}
