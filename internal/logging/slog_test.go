package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewSlogLogger(l), &buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}
	return rec
}

func TestSlogLogger_InfoWritesRecord(t *testing.T) {
	log, buf := newBufLogger()
	log.Info(context.Background(), "hello", "k", "v")

	rec := decodeRecord(t, buf)
	if rec["msg"] != "hello" {
		t.Fatalf("expected msg %q, got %v", "hello", rec["msg"])
	}
	if rec["k"] != "v" {
		t.Fatalf("expected attr k=v, got %v", rec["k"])
	}
}

func TestSlogLogger_WithAddsAttrs(t *testing.T) {
	log, buf := newBufLogger()
	child := log.With("module", "test")
	child.Error(context.Background(), "boom")

	rec := decodeRecord(t, buf)
	if rec["module"] != "test" {
		t.Fatalf("expected module=test in record, got %v", rec["module"])
	}
	if rec["level"] != "ERROR" {
		t.Fatalf("expected ERROR level, got %v", rec["level"])
	}
}
