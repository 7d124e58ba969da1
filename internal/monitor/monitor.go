package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/ports"
	"github.com/bft-labs/dmxemu/pkg/log"
)

// Monitor defaults.
const (
	DefaultPollInterval    = 30 * time.Millisecond
	DefaultClearAfter      = 10 * time.Second
	DefaultSummaryInterval = 10 * time.Second
)

// Config holds monitor settings. Zero values take defaults.
type Config struct {
	NumChannels     int
	PollInterval    time.Duration
	ClearAfter      time.Duration
	SummaryInterval time.Duration
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.NumChannels <= 0 {
		c.NumChannels = domain.DefaultMaxFrameSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ClearAfter <= 0 {
		c.ClearAfter = DefaultClearAfter
	}
	if c.SummaryInterval <= 0 {
		c.SummaryInterval = DefaultSummaryInterval
	}
}

// bufferStats is implemented by frame stores that can report backlog.
type bufferStats interface {
	Len() int
	Dropped() uint64
}

// Monitor drains a FrameSource. Only the Run goroutine mutates its state;
// readers use Snapshot.
type Monitor struct {
	cfg    Config
	source ports.FrameSource
	logger log.Logger
	now    func() time.Time

	snap atomic.Pointer[Snapshot]

	// Owned by the polling goroutine.
	values      []byte
	frames      uint64
	marked      int
	changed     int
	lastLen     int
	lastPort    int
	lastFrameAt time.Time

	summaryAt     time.Time
	summaryFrames uint64

	runMu sync.Mutex
}

// New creates a monitor over source. A nil logger discards output.
func New(source ports.FrameSource, cfg Config, logger log.Logger) *Monitor {
	cfg.SetDefaults()
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	m := &Monitor{
		cfg:    cfg,
		source: source,
		logger: logger.With(log.String("component", "monitor")),
		now:    time.Now,
		values: make([]byte, cfg.NumChannels),
	}
	m.summaryAt = m.now()
	m.publish()
	return m
}

// Snapshot returns the most recently published state.
func (m *Monitor) Snapshot() *Snapshot {
	return m.snap.Load()
}

// Run polls until ctx is cancelled. Only one Run may be active at a time;
// a second concurrent call blocks until the first returns.
func (m *Monitor) Run(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	m.logger.Info("monitor started",
		log.Int("channels", m.cfg.NumChannels),
		log.Duration("poll_interval", m.cfg.PollInterval),
	)
	m.summaryAt = m.now()
	m.summaryFrames = m.frames

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped", log.Uint64("frames", m.frames))
			return nil
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Poll drains every pending frame and publishes a new snapshot if anything
// changed. It returns the number of frames applied. Poll must not be called
// concurrently with itself or with Run.
func (m *Monitor) Poll() int {
	now := m.now()
	n := 0
	for {
		f, ok := m.source.TryTakeFrame()
		if !ok {
			break
		}
		m.apply(f, now)
		n++
	}

	dirty := n > 0
	if n == 0 && m.marked > 0 && now.Sub(m.lastFrameAt) >= m.cfg.ClearAfter {
		m.marked = 0
		m.changed = 0
		dirty = true
		m.logger.Debug("change markers cleared")
	}
	if dirty {
		m.publish()
	}

	if now.Sub(m.summaryAt) >= m.cfg.SummaryInterval {
		m.summarize(now)
	}
	return n
}

func (m *Monitor) apply(f domain.Frame, now time.Time) {
	width := len(f.Payload)
	if width > len(m.values) {
		width = len(m.values)
	}

	changed := 0
	for i := 0; i < width; i++ {
		if m.values[i] != f.Payload[i] {
			m.values[i] = f.Payload[i]
			changed++
		}
	}

	m.frames++
	m.marked = width
	m.changed = changed
	m.lastLen = f.Len()
	m.lastPort = f.LocalPort
	m.lastFrameAt = now

	m.logger.Debug("frame applied",
		log.Uint64("frame", m.frames),
		log.Int("len", f.Len()),
		log.Int("local_port", f.LocalPort),
		log.Int("changed", changed),
	)
}

func (m *Monitor) publish() {
	values := make([]byte, len(m.values))
	copy(values, m.values)
	m.snap.Store(&Snapshot{
		Frames:        m.frames,
		Values:        values,
		Marked:        m.marked,
		Changed:       m.changed,
		LastLen:       m.lastLen,
		LastLocalPort: m.lastPort,
		LastFrameAt:   m.lastFrameAt,
	})
}

func (m *Monitor) summarize(now time.Time) {
	elapsed := now.Sub(m.summaryAt)
	delta := m.frames - m.summaryFrames

	fields := []log.Field{
		log.Uint64("frames", m.frames),
		log.Float64("frames_per_sec", float64(delta)/elapsed.Seconds()),
	}
	if bs, ok := m.source.(bufferStats); ok {
		fields = append(fields, log.Int("pending", bs.Len()), log.Uint64("dropped", bs.Dropped()))
	}
	m.logger.Info("frame summary", fields...)

	m.summaryAt = now
	m.summaryFrames = m.frames
}
