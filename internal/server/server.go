package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/ports"
	"github.com/bft-labs/dmxemu/pkg/lifecycle"
	"github.com/bft-labs/dmxemu/pkg/log"
)

// Accept retry bounds for transient listener errors.
const (
	acceptBackoffInitial = 5 * time.Millisecond
	acceptBackoffMax     = 1 * time.Second
)

// Server is the TCP frame ingestion server.
type Server struct {
	cfg       Config
	sink      ports.FrameSink
	logger    log.Logger
	lifecycle *lifecycle.DefaultManager

	// mu serializes Start, Serve and Stop. It is never taken by handlers.
	mu   sync.Mutex
	ln   net.Listener
	addr net.Addr

	stats counters
}

// New creates a server that delivers frames to sink.
// A nil logger discards all output.
func New(cfg Config, sink ports.FrameSink, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	cfg.SetDefaults()
	logger = logger.With(log.String("component", "server"))
	return &Server{
		cfg:       cfg,
		sink:      sink,
		logger:    logger,
		lifecycle: lifecycle.NewManager(logger, nil),
	}
}

// Start binds the configured address and begins accepting in the background.
// A bind failure is returned wrapped in domain.ErrBind and leaves the server
// in the Crashed state. Cancelling ctx has the same effect as Stop on the
// sockets, but Stop must still be called to wait for handlers.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStarting, "start requested"); err != nil {
		return err
	}

	addr := s.cfg.Address()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, "bind failed")
		s.logger.Error("bind failed", log.String("addr", addr), log.Err(err))
		return fmt.Errorf("%w: %s: %w", domain.ErrBind, addr, err)
	}

	return s.launch(ctx, ln)
}

// Serve accepts connections on an already bound listener in the background.
// The server takes ownership of ln and closes it on shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStarting, "serve requested"); err != nil {
		return err
	}
	return s.launch(ctx, ln)
}

// launch starts the accept loop. Caller holds s.mu and has moved the
// lifecycle to Starting.
func (s *Server) launch(ctx context.Context, ln net.Listener) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)
	s.ln = ln
	s.addr = ln.Addr()

	// Closing the listener is the only way to unblock Accept.
	context.AfterFunc(runCtx, func() { _ = ln.Close() })

	s.lifecycle.AddWorker()
	go s.acceptLoop(runCtx, ln)

	if err := s.lifecycle.TransitionTo(lifecycle.StateRunning, "listening"); err != nil {
		cancel()
		return err
	}

	s.logger.Info("listening",
		log.Stringer("addr", s.addr),
		log.Int("max_frame_size", s.cfg.MaxFrameSize),
		log.Duration("read_timeout", s.cfg.ReadTimeout),
	)
	return nil
}

// Stop closes the listener and every open connection, then waits up to the
// shutdown grace period for handlers to return. It returns
// domain.ErrShutdownTimeout if they do not.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown is Stop with the wait bounded by ctx instead of the configured
// grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(lifecycle.StateStopping, "stop requested"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.logger.Info("stopping")
	s.lifecycle.Cancel()
	s.mu.Unlock()

	err := s.lifecycle.Wait(ctx)
	if err != nil {
		_ = s.lifecycle.TransitionTo(lifecycle.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(lifecycle.StateStopped, "stopped")
	}

	st := s.Stats()
	s.logger.Info("stopped",
		log.Uint64("connections", st.Accepted),
		log.Uint64("frames", st.Frames),
		log.Uint64("bytes", st.Bytes),
		log.Uint64("protocol_violations", st.ProtocolViolations),
	)
	return err
}

// Addr returns the bound address, or nil before the first successful start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Status returns the current lifecycle state.
func (s *Server) Status() lifecycle.State {
	return s.lifecycle.State()
}

// Stats returns a copy of the server counters.
func (s *Server) Stats() Stats {
	return s.stats.snapshot()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.lifecycle.WorkerDone()

	backoff := lifecycle.NewBackoff(acceptBackoffInitial, acceptBackoffMax)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Debug("accept loop exiting")
				return
			}
			s.stats.acceptErrors.Add(1)
			s.logger.Warn("accept failed, retrying",
				log.Err(err),
				log.Duration("backoff", backoff.Current()),
			)
			if backoff.Wait(ctx) != nil {
				return
			}
			continue
		}
		backoff.Reset()

		s.stats.accepted.Add(1)
		// The accept loop still holds its own worker slot, so adding here
		// cannot race a WaitWithTimeout that has already observed zero.
		s.lifecycle.AddWorker()
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer s.lifecycle.WorkerDone()
	newHandler(conn, s.sink, s.cfg, s.logger, &s.stats).run(ctx)
}
