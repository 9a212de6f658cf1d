package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/config"
	"github.com/rahidz/oeismatcher/internal/daemon"
	"github.com/rahidz/oeismatcher/internal/ingest"
	"github.com/rahidz/oeismatcher/internal/telemetry"
	"github.com/rahidz/oeismatcher/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matcher daemon",
		Long: `Run the background daemon. It keeps the SQLite index open with a warm
page cache and serves analyze requests over a Unix socket, so query
commands respond without re-opening the index.

With --watch, the dump directory is watched and the index is rebuilt
automatically when a fresh dump lands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Watch the dump directory and reindex on changes")
	return cmd
}

func runServe(ctx context.Context, watch bool) error {
	cfg := loadConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	daemonCfg := daemon.DefaultConfig()
	if err := daemonCfg.EnsureDir(); err != nil {
		return err
	}

	pidFile := daemon.NewPIDFile(daemonCfg.PIDPath)
	if pidFile.IsRunning() {
		return fmt.Errorf("daemon already running (pid file: %s)", daemonCfg.PIDPath)
	}
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() { _ = pidFile.Remove() }()

	// Telemetry is kept in memory only; no MetricsStore is attached.
	var metrics *telemetry.Metrics
	if cfg.Cache.Enabled {
		metrics = telemetry.NewMetrics(nil)
		defer func() { _ = metrics.Close() }()
	}

	handler := daemon.NewHandler(st, cfg, cfg.Paths.DB, metrics)

	srv, err := daemon.NewServer(daemonCfg.SocketPath)
	if err != nil {
		return err
	}
	srv.SetHandler(handler)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Idle maintenance: refresh SQLite statistics when the daemon is quiet.
	maintainer := daemon.NewMaintainer(daemon.DefaultMaintenanceConfig(), func(mctx context.Context) error {
		return st.Optimize(mctx)
	})
	maintainer.Start(ctx)
	defer maintainer.Stop()

	if watch {
		go watchDumps(ctx, cfg)
	}

	slog.Info("daemon starting",
		slog.String("socket", daemonCfg.SocketPath),
		slog.String("db", cfg.Paths.DB),
		slog.Bool("watch", watch))

	return srv.ListenAndServe(ctx)
}

// watchDumps rebuilds the index whenever a fresh dump file lands.
func watchDumps(ctx context.Context, cfg *config.Config) {
	debounce, err := time.ParseDuration(cfg.Performance.WatchDebounce)
	if err != nil || debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := watcher.NewHybridWatcher(watcher.Options{DebounceWindow: debounce})
	if err != nil {
		slog.Warn("dump watcher unavailable", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = w.Stop() }()

	dumpDir := filepath.Dir(cfg.Paths.Stripped)
	go func() {
		for batch := range w.Events() {
			slog.Info("dump change detected", slog.Int("events", len(batch)))
			if _, err := ingest.BuildIndex(ingest.BuildOptions{
				StrippedPath: cfg.Paths.Stripped,
				NamesPath:    cfg.Paths.Names,
				KeywordsPath: cfg.Paths.Keywords,
				DBPath:       cfg.Paths.DB,
			}); err != nil {
				slog.Error("auto reindex failed", slog.String("error", err.Error()))
			} else {
				slog.Info("auto reindex complete")
			}
		}
	}()

	if err := w.Start(ctx, dumpDir); err != nil && ctx.Err() == nil {
		slog.Warn("dump watcher stopped", slog.String("error", err.Error()))
	}
}
