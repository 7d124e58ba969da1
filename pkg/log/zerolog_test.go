package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]interface{}{}
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf))

	a.Info("connection opened",
		String("remote", "10.0.0.1:4000"),
		Int("local_port", 5555),
		Duration("idle", 2*time.Second),
		Bool("ok", true),
		Err(errors.New("boom")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	got := lines[0]
	if got["message"] != "connection opened" {
		t.Errorf("message = %v", got["message"])
	}
	if got["level"] != "info" {
		t.Errorf("level = %v, want info", got["level"])
	}
	if got["remote"] != "10.0.0.1:4000" {
		t.Errorf("remote = %v", got["remote"])
	}
	if got["local_port"] != float64(5555) {
		t.Errorf("local_port = %v", got["local_port"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	parent := NewZerologAdapterWithLogger(zerolog.New(&buf))
	child := parent.With(String("conn_id", "abc"), Int("local_port", 1))

	child.Warn("protocol violation", Int("declared", 9000))
	parent.Info("unrelated")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["conn_id"] != "abc" || lines[0]["declared"] != float64(9000) {
		t.Errorf("child line = %v", lines[0])
	}
	if _, ok := lines[1]["conn_id"]; ok {
		t.Errorf("parent logger picked up child fields: %v", lines[1])
	}
}

func TestZerologAdapter_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	a.Debug("hidden")
	a.Info("hidden")
	a.Error("shown")

	if lines := decodeLines(t, &buf); len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}

type endpoint struct{ port int }

func (e endpoint) String() string { return fmt.Sprintf("port %d", e.port) }

func TestStringer_Nil(t *testing.T) {
	var typedNil *endpoint
	tests := []struct {
		name  string
		value fmt.Stringer
		want  string
	}{
		{"untyped nil", nil, "<nil>"},
		{"typed nil pointer", typedNil, "<nil>"},
		{"typed nil addr", (*net.TCPAddr)(nil), "<nil>"},
		{"value", endpoint{port: 5555}, "port 5555"},
		{"pointer", &endpoint{port: 80}, "port 80"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if f := Stringer("remote", tt.value); f.Value != tt.want {
				t.Errorf("Stringer() = %v, want %s", f.Value, tt.want)
			}
		})
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l = l.With(String("k", "v"))
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
