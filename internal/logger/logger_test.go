package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/hitoshi/aitrainer/internal/ctxutil"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"", TypeConsole, false},
		{"console", TypeConsole, false},
		{"PRETTY", TypePretty, false},
		{" json ", TypeJSON, false},
		{"winston", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelForEnv(t *testing.T) {
	if got := LevelForEnv("prd"); got != slog.LevelInfo {
		t.Errorf("LevelForEnv(prd) = %v, want INFO", got)
	}
	for _, env := range []string{"", "dev", "stg"} {
		if got := LevelForEnv(env); got != slog.LevelDebug {
			t.Errorf("LevelForEnv(%q) = %v, want DEBUG", env, got)
		}
	}
}

func TestNew_JSON_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, TypeJSON, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("test message", slog.String("key", "value"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON log output, got error: %v\nraw output: %s", err, buf.String())
	}

	if entry["msg"] != "test message" {
		t.Errorf("msg = %q, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %q, want %q", entry["key"], "value")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %q, want %q", entry["level"], "info")
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("expected 'ts' field in JSON log output")
	}
}

func TestNew_JSON_AddsContextIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, TypeJSON, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	ctx = ctxutil.WithUserID(ctx, 42)
	l.InfoContext(ctx, "with context")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	// JSONの数値はfloat64になる
	if entry["user_id"] != float64(42) {
		t.Errorf("user_id = %v, want 42", entry["user_id"])
	}
}

func TestNew_JSON_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, TypeJSON, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Debug("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("debug log should be filtered at info level, got %q", buf.String())
	}
}

func TestNew_Console_WritesTextWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, TypeConsole, slog.LevelDebug)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.DebugContext(ctxutil.WithRequestID(context.Background(), "abc"), "hello")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") {
		t.Errorf("output = %q, should contain msg=hello", out)
	}
	if !strings.Contains(out, "request_id=abc") {
		t.Errorf("output = %q, should contain request_id=abc", out)
	}
}

func TestNew_Pretty_WritesConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, TypePretty, slog.LevelDebug)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Warn("pretty warning", slog.String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, "WARN") {
		t.Errorf("output = %q, should contain capitalized level", out)
	}
	if !strings.Contains(out, "pretty warning") {
		t.Errorf("output = %q, should contain message", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("pretty output should not be a JSON object: %q", out)
	}
}

func TestNew_UnknownType(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Type("xml"), slog.LevelInfo); err == nil {
		t.Fatal("expected error for unknown logger type")
	}
}
