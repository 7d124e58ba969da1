package monitor

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/framebuf"
	"github.com/bft-labs/dmxemu/pkg/log"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMonitor(t *testing.T, cfg Config) (*Monitor, *framebuf.Buffer, *fakeClock) {
	t.Helper()
	buf := framebuf.New()
	m := New(buf, cfg, nil)
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	m.now = clock.Now
	m.summaryAt = clock.Now()
	return m, buf, clock
}

func TestMonitor_InitialSnapshot(t *testing.T) {
	m, _, _ := newTestMonitor(t, Config{NumChannels: 16})
	s := m.Snapshot()
	if s == nil {
		t.Fatal("Snapshot() = nil")
	}
	if len(s.Values) != 16 || s.Frames != 0 || s.Marked != 0 {
		t.Errorf("initial snapshot = %+v", s)
	}
}

func TestMonitor_PollDrainsAllPending(t *testing.T) {
	m, buf, _ := newTestMonitor(t, Config{NumChannels: 8})

	buf.Push(domain.Frame{LocalPort: 5555, Payload: []byte{1, 2, 3}})
	buf.Push(domain.Frame{LocalPort: 5555, Payload: []byte{1, 9, 3, 4}})

	if n := m.Poll(); n != 2 {
		t.Fatalf("Poll() = %d, want 2", n)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer Len = %d, want 0", buf.Len())
	}

	s := m.Snapshot()
	if s.Frames != 2 {
		t.Errorf("Frames = %d, want 2", s.Frames)
	}
	if !bytes.Equal(s.Values, []byte{1, 9, 3, 4, 0, 0, 0, 0}) {
		t.Errorf("Values = %v", s.Values)
	}
	if s.Marked != 4 || s.LastLen != 4 || s.LastLocalPort != 5555 {
		t.Errorf("snapshot = %+v", s)
	}
	// Second frame changed channel 2 and set channel 4.
	if s.Changed != 2 {
		t.Errorf("Changed = %d, want 2", s.Changed)
	}
	if v, ok := s.Channel(2); !ok || v != 9 {
		t.Errorf("Channel(2) = %d, %v", v, ok)
	}
	if _, ok := s.Channel(0); ok {
		t.Error("Channel(0) ok = true")
	}
	if _, ok := s.Channel(9); ok {
		t.Error("Channel(9) ok = true")
	}
}

func TestMonitor_OversizedFrameClipped(t *testing.T) {
	m, buf, _ := newTestMonitor(t, Config{NumChannels: 4})

	buf.Push(domain.Frame{Payload: []byte{1, 2, 3, 4, 5, 6}})
	m.Poll()

	s := m.Snapshot()
	if !bytes.Equal(s.Values, []byte{1, 2, 3, 4}) {
		t.Errorf("Values = %v", s.Values)
	}
	if s.Marked != 4 || s.LastLen != 6 {
		t.Errorf("Marked = %d, LastLen = %d", s.Marked, s.LastLen)
	}
}

func TestMonitor_SnapshotImmutable(t *testing.T) {
	m, buf, _ := newTestMonitor(t, Config{NumChannels: 4})

	buf.Push(domain.Frame{Payload: []byte{1}})
	m.Poll()
	first := m.Snapshot()

	buf.Push(domain.Frame{Payload: []byte{2}})
	m.Poll()

	if first.Values[0] != 1 {
		t.Errorf("published snapshot mutated: %v", first.Values)
	}
	if m.Snapshot().Values[0] != 2 {
		t.Errorf("latest snapshot = %v", m.Snapshot().Values)
	}
}

func TestMonitor_ClearsMarkersAfterIdle(t *testing.T) {
	m, buf, clock := newTestMonitor(t, Config{NumChannels: 4, ClearAfter: time.Second})

	buf.Push(domain.Frame{Payload: []byte{7, 7}})
	m.Poll()

	clock.Advance(999 * time.Millisecond)
	m.Poll()
	if got := m.Snapshot().Marked; got != 2 {
		t.Fatalf("Marked = %d before clear delay, want 2", got)
	}

	clock.Advance(time.Millisecond)
	m.Poll()
	s := m.Snapshot()
	if s.Marked != 0 || s.Changed != 0 {
		t.Errorf("after clear: Marked = %d, Changed = %d", s.Marked, s.Changed)
	}
	if s.Values[0] != 7 {
		t.Errorf("values cleared with markers: %v", s.Values)
	}
}

func TestMonitor_EmptyPollKeepsSnapshot(t *testing.T) {
	m, _, _ := newTestMonitor(t, Config{NumChannels: 4})
	before := m.Snapshot()
	if n := m.Poll(); n != 0 {
		t.Fatalf("Poll() = %d, want 0", n)
	}
	if m.Snapshot() != before {
		t.Error("empty poll republished snapshot")
	}
}

func TestMonitor_Summary(t *testing.T) {
	var out bytes.Buffer
	buf := framebuf.New(framebuf.WithCapacity(1))
	m := New(buf, Config{NumChannels: 4, SummaryInterval: time.Second}, log.NewZerologAdapterWithLogger(zerolog.New(&out)))
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	m.now = clock.Now
	m.summaryAt = clock.Now()

	buf.Push(domain.Frame{Payload: []byte{1}})
	buf.Push(domain.Frame{Payload: []byte{2}})
	m.Poll()

	clock.Advance(time.Second)
	m.Poll()

	logs := out.String()
	for _, want := range []string{`"message":"frame summary"`, `"frames":1`, `"dropped":1`, `"pending":0`, `"frames_per_sec":1`} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %s:\n%s", want, logs)
		}
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	buf := framebuf.New()
	m := New(buf, Config{NumChannels: 4, PollInterval: time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	buf.Push(domain.Frame{Payload: []byte{42}})
	deadline := time.Now().Add(2 * time.Second)
	for m.Snapshot().Frames != 1 {
		if time.Now().After(deadline) {
			t.Fatal("frame not applied by Run")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
