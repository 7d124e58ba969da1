package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/ports"
	"github.com/bft-labs/dmxemu/internal/wire"
	"github.com/bft-labs/dmxemu/pkg/log"
)

// closeReason says why a handler stopped.
type closeReason string

const (
	reasonPeerClosed        closeReason = "peer_closed"
	reasonProtocolViolation closeReason = "protocol_violation"
	reasonIdleTimeout       closeReason = "idle_timeout"
	reasonIOFailure         closeReason = "io_failure"
	reasonShutdown          closeReason = "shutdown"
)

// handler owns one accepted connection: its socket, its frame reader and its
// read loop. Nothing in it is shared with other handlers.
type handler struct {
	conn        net.Conn
	reader      *wire.Reader
	sink        ports.FrameSink
	readTimeout time.Duration
	localPort   int
	logger      log.Logger
	stats       *counters

	frames int
	bytes  int
}

func newHandler(conn net.Conn, sink ports.FrameSink, cfg Config, logger log.Logger, stats *counters) *handler {
	localPort := 0
	if a, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		localPort = a.Port
	}
	if stats == nil {
		stats = &counters{}
	}
	return &handler{
		conn:        conn,
		reader:      wire.NewReader(conn, cfg.MaxFrameSize),
		sink:        sink,
		readTimeout: cfg.ReadTimeout,
		localPort:   localPort,
		logger: logger.With(
			log.String("conn_id", uuid.NewString()),
			log.Stringer("remote", conn.RemoteAddr()),
			log.Int("local_port", localPort),
		),
		stats: stats,
	}
}

// run reads frames until the connection ends or ctx is cancelled, pushing
// each complete frame to the sink. The socket is closed on return.
func (h *handler) run(ctx context.Context) closeReason {
	// Cancellation closes the socket, which unblocks a pending read.
	stop := context.AfterFunc(ctx, func() { _ = h.conn.Close() })
	defer stop()
	defer h.conn.Close()

	h.logger.Info("connection opened")

	for {
		if h.readTimeout > 0 {
			if err := h.conn.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
				return h.closed(ctx, err)
			}
		}

		payload, err := h.reader.ReadFrame()
		if err != nil {
			return h.closed(ctx, err)
		}
		if ctx.Err() != nil {
			// Decoded after shutdown began; not delivered.
			return h.closed(ctx, ctx.Err())
		}

		h.sink.Push(domain.Frame{LocalPort: h.localPort, Payload: payload})
		h.frames++
		h.bytes += len(payload)
		h.stats.frames.Add(1)
		h.stats.bytes.Add(uint64(len(payload)))
	}
}

// closed classifies the terminating error and writes the closure log entry.
func (h *handler) closed(ctx context.Context, err error) closeReason {
	h.stats.closed.Add(1)

	summary := []log.Field{
		log.Int("frames", h.frames),
		log.Int("bytes", h.bytes),
	}

	var fe *wire.FrameError
	hasFrameErr := errors.As(err, &fe)

	var ne net.Error
	switch {
	case ctx.Err() != nil:
		h.logger.Info("connection closed", append(summary, log.String("reason", string(reasonShutdown)))...)
		return reasonShutdown

	case domain.IsProtocolViolation(err):
		h.stats.violations.Add(1)
		fields := append(summary, log.String("reason", string(reasonProtocolViolation)), log.Err(err))
		if hasFrameErr {
			fields = append(fields, log.Uint64("declared", uint64(fe.Declared)), log.Int("max", fe.Max))
		}
		h.logger.Warn("connection closed", fields...)
		return reasonProtocolViolation

	case errors.Is(err, domain.ErrConnectionClosed):
		fields := append(summary, log.String("reason", string(reasonPeerClosed)))
		if hasFrameErr && (fe.Phase == wire.PhaseBody || fe.Received > 0) {
			fields = append(fields,
				log.Bool("mid_frame", true),
				log.String("phase", fe.Phase.String()),
				log.Uint64("declared", uint64(fe.Declared)),
				log.Int("received", fe.Received),
			)
		}
		h.logger.Info("connection closed", fields...)
		return reasonPeerClosed

	case errors.As(err, &ne) && ne.Timeout():
		h.logger.Info("connection closed", append(summary,
			log.String("reason", string(reasonIdleTimeout)),
			log.Duration("timeout", h.readTimeout),
		)...)
		return reasonIdleTimeout

	default:
		fields := append(summary, log.String("reason", string(reasonIOFailure)), log.Err(err))
		if hasFrameErr {
			fields = append(fields, log.String("phase", fe.Phase.String()))
		}
		h.logger.Warn("connection closed", fields...)
		return reasonIOFailure
	}
}
