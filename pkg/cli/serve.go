package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mike10004/har-replay-proxy/pkg/har"
	"github.com/mike10004/har-replay-proxy/pkg/logging"
	"github.com/mike10004/har-replay-proxy/pkg/replay"
	"github.com/mike10004/har-replay-proxy/pkg/requestlog"
	"github.com/mike10004/har-replay-proxy/pkg/rules"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags holds the parsed command-line flags for serving.
type serveFlags struct {
	port          int
	configFile    string
	root          string
	debug         bool
	logLevel      string
	logFormat     string
	maxLogEntries int
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

func init() {
	f := &serveFlagVals
	rootCmd.Flags().IntVarP(&f.port, "port", "p", replay.DefaultPort, "HTTP server port")
	rootCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to replay configuration file (defaults to replay-config.{yaml,yml,json} in the working directory)")
	rootCmd.Flags().StringVar(&f.root, "root", ".", "Base directory that relative mapping destinations resolve against")
	rootCmd.Flags().BoolVar(&f.debug, "debug", false, "Enable per-response debug logging")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.Flags().IntVar(&f.maxLogEntries, "max-log-entries", requestlog.DefaultMaxEntries, "Maximum per-response log entries retained with --debug")
}

func runServe(f *serveFlags, tracePath string) error {
	level := logging.ParseLevel(f.logLevel)
	if f.debug {
		level = logging.LevelDebug
	}
	log := logging.New(logging.Config{
		Level:  level,
		Format: logging.ParseFormat(f.logFormat),
	})

	entries, err := har.LoadEntriesFromFile(tracePath)
	if err != nil {
		return fmt.Errorf("failed to load trace: %w", err)
	}
	log.Info("trace loaded", "path", tracePath, "entries", len(entries))

	compiled, err := rules.LoadAndCompile(f.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := []replay.HandlerOption{
		replay.WithLogger(log),
		replay.WithRoot(f.root),
	}
	if f.debug {
		opts = append(opts, replay.WithRequestLog(requestlog.NewMemoryStore(f.maxLogEntries)))
	}
	handler := replay.NewHandler(entries, compiled, opts...)

	srv := replay.NewServer(
		&replay.ServerConfig{
			Port:         f.port,
			ReadTimeout:  replay.DefaultReadTimeout,
			WriteTimeout: replay.DefaultWriteTimeout,
		},
		handler,
		replay.WithServerLogger(log),
	)
	if err := srv.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(ctx)
}
