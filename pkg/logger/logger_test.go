package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("decode log entry: %v; raw=%s", err, buf.String())
	}
	return entry
}

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	t.Setenv(envLogFormat, "json")
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "station-api", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithStationID(ctx, "BORP-01")
	ctx = log.WithCode(ctx, "GAUZE-4X4")

	log.Error(ctx, "activation failed", errors.New("boom"))

	entry := decodeLast(t, buf)
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id to be preserved; entry=%v", entry)
	}
	if entry["station_id"] != "BORP-01" || entry["code"] != "GAUZE-4X4" {
		t.Fatalf("expected station and code fields; entry=%v", entry)
	}
	if entry["service"] != "station-api" {
		t.Fatalf("expected service field; entry=%v", entry)
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatalf("expected stack trace on error; entry=%v", entry)
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	t.Setenv(envLogFormat, "json")

	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf, WarnStack: true})
	log.Warn(context.Background(), "low stock")
	if _, ok := decodeLast(t, buf)["stack"]; !ok {
		t.Fatalf("expected stack when warn stack enabled")
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
	quiet.Warn(context.Background(), "low stock")
	if _, ok := decodeLast(t, buf)["stack"]; ok {
		t.Fatalf("did not expect stack when warn stack disabled")
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	t.Setenv(envLogFormat, "json")
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: buf})

	log.Info(context.Background(), "ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %s", buf.String())
	}
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	t.Setenv(envLogFormat, "json")
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	parent := context.Background()
	_ = log.WithFields(parent, map[string]any{"profile": "surgical_station"})
	log.Info(parent, "plain")

	if _, ok := decodeLast(t, buf)["profile"]; ok {
		t.Fatalf("field leaked into parent context")
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" WARN "); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", lvl)
	}
}
