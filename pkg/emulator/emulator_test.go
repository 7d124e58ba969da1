package emulator_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/dmxemu/internal/wire"
	"github.com/bft-labs/dmxemu/pkg/emulator"
)

// testLogger captures log messages.
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, fields ...emulator.LogField) { l.log("DEBUG", msg) }
func (l *testLogger) Info(msg string, fields ...emulator.LogField)  { l.log("INFO", msg) }
func (l *testLogger) Warn(msg string, fields ...emulator.LogField)  { l.log("WARN", msg) }
func (l *testLogger) Error(msg string, fields ...emulator.LogField) { l.log("ERROR", msg) }

func (l *testLogger) With(fields ...emulator.LogField) emulator.Logger { return l }

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("[%s] %s", level, msg))
}

func (l *testLogger) Contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == s {
			return true
		}
	}
	return false
}

// trackingPlugin records initialization and shutdown order.
type trackingPlugin struct {
	name      string
	mu        *sync.Mutex
	order     *[]string
	initError error
	gotCfg    emulator.PluginConfig
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(ctx context.Context, cfg emulator.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initError != nil {
		return p.initError
	}
	p.gotCfg = cfg
	*p.order = append(*p.order, "init:"+p.name)
	return nil
}

func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.order = append(*p.order, "shutdown:"+p.name)
	return nil
}

// panicPlugin panics during initialization.
type panicPlugin struct {
	emulator.BasePlugin
}

func (panicPlugin) Initialize(context.Context, emulator.PluginConfig) error {
	panic("intentional panic during initialization")
}

// eventTracker records state changes.
type eventTracker struct {
	emulator.BaseEventHandler
	mu      sync.Mutex
	changes []emulator.StateChangeEvent
}

func (e *eventTracker) OnStateChange(event emulator.StateChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changes = append(e.changes, event)
}

func (e *eventTracker) States() []emulator.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]emulator.State, len(e.changes))
	for i, c := range e.changes {
		out[i] = c.Current
	}
	return out
}

func testConfig() emulator.Config {
	cfg := emulator.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.PollInterval = 5 * time.Millisecond
	cfg.ShutdownGrace = 2 * time.Second
	return cfg
}

func startEmulator(t *testing.T, cfg emulator.Config, opts ...emulator.Option) *emulator.Emulator {
	t.Helper()
	emu, err := emulator.New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := emu.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if emu.Status() == emulator.StateRunning {
			_ = emu.Stop()
		}
	})
	return emu
}

func send(t *testing.T, emu *emulator.Emulator, frames ...[]byte) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", emu.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	for _, f := range frames {
		if err := wire.WriteFrame(conn, f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEmulator_MonitorSeesFrames(t *testing.T) {
	emu := startEmulator(t, testConfig())

	send(t, emu, []byte{10, 20, 30}, []byte{11, 21})

	eventually(t, "two frames applied", func() bool { return emu.Snapshot().Frames == 2 })

	snap := emu.Snapshot()
	if v, _ := snap.Channel(1); v != 11 {
		t.Errorf("Channel(1) = %d, want 11", v)
	}
	if v, _ := snap.Channel(3); v != 30 {
		t.Errorf("Channel(3) = %d, want 30", v)
	}
	if snap.Marked != 2 {
		t.Errorf("Marked = %d, want 2", snap.Marked)
	}
}

func TestEmulator_WithoutMonitor(t *testing.T) {
	emu := startEmulator(t, testConfig(), emulator.WithoutMonitor())

	if emu.Snapshot() != nil {
		t.Error("Snapshot() != nil without monitor")
	}

	send(t, emu, []byte{1}, []byte{2}, []byte{3})

	var got []byte
	eventually(t, "three frames", func() bool {
		if f, ok := emu.Frames().TryTakeFrame(); ok {
			got = append(got, f.Payload[0])
		}
		return len(got) == 3
	})
	if string(got) != string([]byte{1, 2, 3}) {
		t.Errorf("frames = %v, want FIFO order [1 2 3]", got)
	}
	if st := emu.Stats(); st.Frames != 3 {
		t.Errorf("Stats().Frames = %d, want 3", st.Frames)
	}
}

func TestEmulator_LIFOBuffer(t *testing.T) {
	cfg := testConfig()
	cfg.BufferOrder = emulator.LIFO
	emu := startEmulator(t, cfg, emulator.WithoutMonitor())

	send(t, emu, []byte{1}, []byte{2})
	eventually(t, "frames buffered", func() bool { return emu.Stats().Frames == 2 })

	f, ok := emu.Frames().TryTakeFrame()
	if !ok || f.Payload[0] != 2 {
		t.Errorf("TryTakeFrame() = %v, %v; want newest frame", f.Payload, ok)
	}
}

func TestEmulator_BindFailure(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()

	cfg := testConfig()
	cfg.Port = occupied.Addr().(*net.TCPAddr).Port

	events := &eventTracker{}
	emu, err := emulator.New(cfg, emulator.WithEventHandler(events))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = emu.Start(context.Background())
	if !errors.Is(err, emulator.ErrBind) {
		t.Fatalf("Start() error = %v, want ErrBind", err)
	}
	if emu.Status() != emulator.StateCrashed {
		t.Errorf("Status() = %v, want Crashed", emu.Status())
	}
	states := events.States()
	if len(states) != 2 || states[0] != emulator.StateStarting || states[1] != emulator.StateCrashed {
		t.Errorf("state changes = %v", states)
	}
}

func TestEmulator_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BufferCapacity = -1
	if _, err := emulator.New(cfg); !errors.Is(err, emulator.ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestEmulator_Lifecycle(t *testing.T) {
	events := &eventTracker{}
	emu, err := emulator.New(testConfig(), emulator.WithEventHandler(events))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if emu.Status() != emulator.StateStopped {
		t.Fatalf("initial Status() = %v", emu.Status())
	}
	if err := emu.Stop(); !errors.Is(err, emulator.ErrNotRunning) {
		t.Errorf("Stop() before Start error = %v, want ErrNotRunning", err)
	}
	if err := emu.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := emu.Start(context.Background()); !errors.Is(err, emulator.ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
	if err := emu.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []emulator.State{emulator.StateStarting, emulator.StateRunning, emulator.StateStopping, emulator.StateStopped}
	got := events.States()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("state changes = %v, want %v", got, want)
	}
}

func TestEmulator_StopAfterContextCancel(t *testing.T) {
	emu, err := emulator.New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := emu.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()
	if err := emu.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if emu.Status() != emulator.StateStopped {
		t.Errorf("Status() = %v, want Stopped", emu.Status())
	}
}

func TestEmulator_PluginOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	p1 := &trackingPlugin{name: "p1", mu: &mu, order: &order}
	p2 := &trackingPlugin{name: "p2", mu: &mu, order: &order}

	logger := &testLogger{}
	emu := startEmulator(t, testConfig(),
		emulator.WithLogger(logger),
		emulator.WithPlugin(p1),
		emulator.WithPlugin(p2),
	)
	if err := emu.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{"init:p1", "init:p2", "shutdown:p2", "shutdown:p1"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if p1.gotCfg.Addr != emu.Addr().String() || p1.gotCfg.NumChannels != 512 {
		t.Errorf("plugin config = %+v", p1.gotCfg)
	}
	if !logger.Contains("[INFO] plugin initialized") {
		t.Error("missing plugin initialized log")
	}
}

func TestEmulator_PluginInitFailure(t *testing.T) {
	var mu sync.Mutex
	var order []string
	p1 := &trackingPlugin{name: "p1", mu: &mu, order: &order}
	p2 := &trackingPlugin{name: "p2", mu: &mu, order: &order, initError: errors.New("boom")}

	emu, err := emulator.New(testConfig(), emulator.WithPlugin(p1), emulator.WithPlugin(p2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := emu.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error")
	}
	if emu.Status() != emulator.StateCrashed {
		t.Errorf("Status() = %v, want Crashed", emu.Status())
	}
	want := []string{"init:p1", "shutdown:p1"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	// The listener must have been released.
	if _, err := net.DialTimeout("tcp", emu.Addr().String(), 200*time.Millisecond); err == nil {
		t.Error("dial succeeded after failed Start")
	}
}

// stuckPlugin ignores its shutdown context until released.
type stuckPlugin struct {
	emulator.BasePlugin
	release chan struct{}
}

func (p *stuckPlugin) Name() string { return "stuck" }

func (p *stuckPlugin) Shutdown(context.Context) error {
	<-p.release
	return nil
}

func TestEmulator_StopBoundedByGrace(t *testing.T) {
	var mu sync.Mutex
	var order []string
	first := &trackingPlugin{name: "first", mu: &mu, order: &order}
	stuck := &stuckPlugin{release: make(chan struct{})}
	defer close(stuck.release)

	cfg := testConfig()
	cfg.ShutdownGrace = 200 * time.Millisecond
	emu := startEmulator(t, cfg, emulator.WithPlugin(first), emulator.WithPlugin(stuck))

	start := time.Now()
	err := emu.Stop()
	elapsed := time.Since(start)

	if !errors.Is(err, emulator.ErrShutdownTimeout) {
		t.Fatalf("Stop() error = %v, want ErrShutdownTimeout", err)
	}
	if elapsed > time.Second {
		t.Errorf("Stop() took %v with a 200ms grace period", elapsed)
	}
	if emu.Status() != emulator.StateCrashed {
		t.Errorf("Status() = %v, want Crashed", emu.Status())
	}
	// Plugins behind the stuck one are still asked to shut down.
	eventually(t, "first plugin shutdown", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Sprint(order) == fmt.Sprint([]string{"init:first", "shutdown:first"})
	})
}

func TestEmulator_PluginPanicRecovered(t *testing.T) {
	emu, err := emulator.New(testConfig(), emulator.WithPlugin(panicPlugin{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := emu.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error from panicking plugin")
	}
	if emu.Status() != emulator.StateCrashed {
		t.Errorf("Status() = %v, want Crashed", emu.Status())
	}
}

func TestModuleVersions(t *testing.T) {
	versions := emulator.ModuleVersions()
	for _, name := range []string{"emulator", "lifecycle", "log"} {
		if versions[name] == "" {
			t.Errorf("missing version for %s", name)
		}
	}
}
