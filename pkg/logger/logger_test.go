package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewWritesJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Encoding: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, log).Debug("hello")
	_ = log.Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["request_id"] != "req-42" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatal("expected timestamp key")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "loud", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden")
	_ = log.Sync()
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level, got %q", buf.String())
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("got %q", got)
	}
	if WithRequestID(context.Background(), nil) != nil {
		t.Fatal("nil logger must stay nil")
	}
}
