package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	kv := sanitizeKVs([]interface{}{"paper_id", "paper_1", "api_key", "abc", "dangling"})
	if len(kv) != 5 {
		t.Fatalf("len = %d, want 5", len(kv))
	}
	if kv[1] != "paper_1" {
		t.Errorf("paper_id value = %v, want paper_1", kv[1])
	}
	if kv[3] != "[REDACTED]" {
		t.Errorf("api_key value = %v, want [REDACTED]", kv[3])
	}
	if kv[4] != "dangling" {
		t.Errorf("trailing key = %v, want dangling", kv[4])
	}
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "graph").Info("paper ingested", "paper_id", "paper_1", "token", "t0k")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "graph" {
		t.Errorf("component = %v", fields["component"])
	}
	if fields["paper_id"] != "paper_1" {
		t.Errorf("paper_id = %v", fields["paper_id"])
	}
	if fields["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want redacted", fields["token"])
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New("dev", "loud"); err == nil {
		t.Error("New() with unknown level should fail")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("ignored", "k", "v")
	l.Sync()
}
