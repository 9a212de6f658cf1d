package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/config"
	"github.com/rahidz/oeismatcher/internal/daemon"
	matcherrors "github.com/rahidz/oeismatcher/internal/errors"
	"github.com/rahidz/oeismatcher/internal/output"
	"github.com/rahidz/oeismatcher/internal/pipeline"
	"github.com/rahidz/oeismatcher/internal/store"
)

// loadConfig loads layered configuration starting from the working directory.
func loadConfig() *config.Config {
	wd, err := os.Getwd()
	if err != nil {
		return config.NewConfig()
	}
	cfg, err := config.Load(wd)
	if err != nil {
		slog.Warn("config load failed, using defaults", slog.String("error", err.Error()))
		return config.NewConfig()
	}
	return cfg
}

// openStore opens the configured SQLite index, mapping a missing file to
// the IndexMissing error kind so callers print the build-index hint.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	path := cfg.Paths.DB
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, matcherrors.IndexMissingError("no index found at " + path + ". Run 'oeismatch build-index' first")
	}
	return store.OpenSQLiteStore(path)
}

// analyzeOptions are the shared CLI flags of the query commands.
type analyzeOptions struct {
	limit       int
	minLength   int
	subsequence bool
	format      string // "text", "json"
	local       bool   // bypass the daemon
	diagnostics bool
}

func addAnalyzeFlags(cmd *cobra.Command, opts *analyzeOptions) {
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = config default)")
	cmd.Flags().IntVar(&opts.minLength, "min-length", 0, "Minimum match length (0 = config default)")
	cmd.Flags().BoolVar(&opts.subsequence, "subsequence", false, "Match the query anywhere inside a sequence, not only as a prefix")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.local, "local", false, "Run locally even if the daemon is up")
	cmd.Flags().BoolVar(&opts.diagnostics, "timings", false, "Show per-stage timings")
}

// runAnalyze executes one analyze request daemon-first, falling back to an
// in-process run against the configured store.
func runAnalyze(ctx context.Context, cmd *cobra.Command, params daemon.AnalyzeParams, opts analyzeOptions) error {
	// Try the daemon first: it keeps the index open and its cache warm.
	daemonCfg := daemon.DefaultConfig()
	client := daemon.NewClient(daemonCfg)
	if !opts.local && client.IsRunning() {
		res, err := client.Analyze(ctx, params)
		if err == nil {
			slog.Debug("analyze served by daemon")
			return renderResult(cmd, res, opts.format)
		}
		slog.Warn("daemon analyze failed, falling back to local", slog.String("error", err.Error()))
	}

	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	handler := daemon.NewHandler(st, cfg, cfg.Paths.DB, nil)
	res, err := handler.HandleAnalyze(ctx, params)
	if err != nil {
		return err
	}
	return renderResult(cmd, res, opts.format)
}

// renderResult prints a wire-shaped result as text or JSON.
func renderResult(cmd *cobra.Command, res *pipeline.ResultJSON, format string) error {
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	out := output.New(cmd.OutOrStdout())
	out.ResultJSON(res)
	return nil
}
