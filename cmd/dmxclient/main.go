package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bft-labs/dmxemu/internal/cliconfig"
	"github.com/bft-labs/dmxemu/internal/domain"
	"github.com/bft-labs/dmxemu/internal/logging"
	"github.com/bft-labs/dmxemu/internal/wire"
)

type clientConfig struct {
	Host     string
	Port     int
	Count    int
	Channels int
	Interval time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dmxclient:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := clientConfig{
		Host:     "localhost",
		Port:     cliconfig.DefaultPort,
		Count:    64,
		Channels: domain.DefaultMaxFrameSize,
		Interval: 500 * time.Millisecond,
	}
	var level string

	root := &cobra.Command{
		Use:           "dmxclient",
		Short:         "Send test frames to a dmxemu server",
		Long:          "Connects to a dmxemu server and sends frames whose channel n holds (n + i) % 256 for frame i.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer, err := logging.New(logging.Options{Level: level, Console: true})
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	f := root.Flags()
	f.StringVar(&cfg.Host, "host", cfg.Host, "emulator host")
	f.IntVar(&cfg.Port, "port", cfg.Port, "emulator port")
	f.IntVar(&cfg.Count, "count", cfg.Count, "number of frames to send")
	f.IntVar(&cfg.Channels, "channels", cfg.Channels, "channels per frame")
	f.DurationVar(&cfg.Interval, "interval", cfg.Interval, "delay between frames")
	f.StringVar(&level, "log-level", "info", "log level")

	return root
}

// testFrame builds frame i of the test pattern: channel n carries (n+i) mod 256.
func testFrame(i, channels int) []byte {
	b := make([]byte, channels)
	for n := range b {
		b[n] = byte((n + i) % 256)
	}
	return b
}

func run(ctx context.Context, cfg clientConfig, logger zerolog.Logger) error {
	if cfg.Channels <= 0 {
		return fmt.Errorf("channels must be positive")
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	logger.Info().Str("addr", addr).Msg("connecting")

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	buf := make([]byte, 0, wire.HeaderSize+cfg.Channels)
	for i := 0; i < cfg.Count; i++ {
		if i > 0 && cfg.Interval > 0 {
			t := time.NewTimer(cfg.Interval)
			select {
			case <-ctx.Done():
				t.Stop()
				logger.Info().Int("sent", i).Msg("interrupted")
				return nil
			case <-t.C:
			}
		}

		buf = wire.AppendFrame(buf[:0], testFrame(i, cfg.Channels))
		if _, err := conn.Write(buf); err != nil {
			return fmt.Errorf("send frame %d: %w", i+1, err)
		}
		logger.Debug().Int("frame", i+1).Int("len", cfg.Channels).Msg("frame sent")
	}

	logger.Info().Int("sent", cfg.Count).Msg("done")
	return nil
}
