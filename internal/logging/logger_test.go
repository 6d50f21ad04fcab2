package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	fn()

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &got); err != nil {
		t.Fatalf("log line is not JSON: %q (%v)", buf.String(), err)
	}
	return got
}

func TestInfoWritesFields(t *testing.T) {
	got := capture(t, func() {
		Info("match started", Fields{"match": "m_1", "tier": "hard"})
	})
	if got["level"] != "info" || got["msg"] != "match started" {
		t.Fatalf("unexpected envelope: %v", got)
	}
	if got["match"] != "m_1" || got["tier"] != "hard" {
		t.Fatalf("fields missing: %v", got)
	}
	if _, ok := got["ts"]; !ok {
		t.Fatal("timestamp missing")
	}
}

func TestErrorIncludesErrorText(t *testing.T) {
	fields := Fields{"user": "u_1"}
	got := capture(t, func() {
		Error("record result", errors.New("connection refused"), fields)
	})
	if got["level"] != "error" || got["error"] != "connection refused" {
		t.Fatalf("unexpected line: %v", got)
	}
	if _, ok := fields["error"]; ok {
		t.Fatal("caller's fields were mutated")
	}
}

func TestNilFields(t *testing.T) {
	got := capture(t, func() {
		Warn("queue full", nil)
	})
	if got["level"] != "warn" {
		t.Fatalf("level = %v, want warn", got["level"])
	}
}
