package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/dmxemu"
	"github.com/bft-labs/dmxemu/internal/cliconfig"
	"github.com/bft-labs/dmxemu/internal/logging"
	"github.com/bft-labs/dmxemu/pkg/emulator"
	"github.com/bft-labs/dmxemu/pkg/log"
	"github.com/bft-labs/dmxemu/plugins/configwatcher"
)

const helpDescription = `
Accept DMX-512 frames over TCP and show what a lighting controller would see.

Highlights:
  - Each frame is a 4-byte big-endian length followed by up to 512 channel bytes.
  - Any number of clients may connect; malformed streams are dropped alone.
  - Configure via file, env (DMXEMU_*), or flags; log level reloads live.
`

var exampleUsage = strings.TrimSpace(`
  dmxemu --port 5555
  dmxemu --config $HOME/.dmxemu/config.toml --log-level info
  DMXEMU_BUFFER_ORDER=lifo dmxemu
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dmxemu:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "dmxemu",
		Short:         "TCP DMX-512 frame emulator",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Env overrides the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			zl, closer, err := logging.New(logging.Options{
				Level:   cfg.LogLevel,
				Console: cfg.LogConsole,
				File:    cfg.LogFile,
				Backups: cfg.LogBackups,
			})
			if err != nil {
				return err
			}
			defer closer.Close()

			version := getVersion()
			printDisclaimer(cmd.OutOrStdout(), version)
			logDisclaimer(zl, version)

			zl.Info().Str("go", runtime.Version()).Msg("starting up")
			if haveFile {
				zl.Info().Str("path", cfgFile).Msg("using configuration file")
			}
			zl.Info().Interface("config", cfg).Msg("configuration")

			opts := []emulator.Option{emulator.WithLogger(log.NewZerologAdapterWithLogger(zl))}
			if cfg.WatchConfig && haveFile {
				opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
					Path:     cfgFile,
					OnChange: levelReloader(zl, changed),
				}))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				zl.Info().Msg("received signal, shutting down")
			}()

			if err := dmxemu.Run(ctx, cfg, opts...); err != nil {
				zl.Error().Err(err).Msg("dmxemu")
				return err
			}
			zl.Info().Msg("shutdown complete")
			return nil
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.dmxemu/config.toml)")
	f.StringVar(&cfg.Host, "host", cfg.Host, "address to listen on")
	f.IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on")
	f.IntVar(&cfg.NumChannels, "num-channels", cfg.NumChannels, "DMX channels per universe; also the maximum frame size")
	f.Var(cliconfig.NewDurationValue(&cfg.PollInterval, time.Millisecond), "poll",
		"how often the monitor drains pending frames (bare integer: milliseconds)")
	f.Var(cliconfig.NewDurationValue(&cfg.ReadTimeout, time.Second), "read-timeout",
		"close connections idle this long (bare integer: seconds; 0 or -1 disables)")
	f.Var(cliconfig.NewDurationValue(&cfg.ShutdownGrace, time.Second), "shutdown-grace",
		"maximum time to wait for connections on shutdown (bare integer: seconds)")
	f.IntVar(&cfg.BufferCapacity, "buffer-capacity", cfg.BufferCapacity, "maximum pending frames (0 for unbounded)")
	f.StringVar(&cfg.BufferOrder, "buffer-order", cfg.BufferOrder, "frame delivery order: fifo or lifo")
	f.StringVar(&cfg.BufferOverflow, "buffer-overflow", cfg.BufferOverflow, "when full: drop-oldest or drop-newest")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error or disabled")
	f.BoolVar(&cfg.LogConsole, "log-console", cfg.LogConsole, "log to stderr")
	f.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "append JSON logs to this file, rotated daily")
	f.IntVar(&cfg.LogBackups, "log-backups", cfg.LogBackups, "rotated log files to keep (0 keeps all)")
	f.BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload log level when the config file changes")

	return root
}

// levelReloader applies log_level from a reloaded file unless the level was
// pinned by a flag or the environment.
func levelReloader(logger zerolog.Logger, changed map[string]bool) configwatcher.ChangeFunc {
	return func(fc cliconfig.FileConfig) {
		if changed["log-level"] || os.Getenv(cliconfig.EnvPrefix+"LOG_LEVEL") != "" || fc.LogLevel == "" {
			return
		}
		level, err := logging.ParseLevel(fc.LogLevel)
		if err != nil {
			logger.Warn().Err(err).Msg("ignoring log_level from reloaded config")
			return
		}
		if level == logging.Level() {
			return
		}
		logging.SetLevel(level)
		logger.Info().Str("level", level.String()).Msg("log level changed")
	}
}
