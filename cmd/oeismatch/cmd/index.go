package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rahidz/oeismatcher/internal/ingest"
	"github.com/rahidz/oeismatcher/internal/textindex"
	"github.com/rahidz/oeismatcher/internal/ui"
)

func newBuildIndexCmd() *cobra.Command {
	var maxTerms int
	var batchSize int
	var noText bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "build-index",
		Short: "Build the local sequence index from the OEIS dumps",
		Long: `Parse the stripped dump (terms), attach names and keywords, compute
per-sequence invariants, and write everything into the SQLite index.
Also builds the full-text name index unless --no-text is given.

The dumps must exist first; run 'oeismatch sync' to download them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			if _, err := os.Stat(cfg.Paths.Stripped); os.IsNotExist(err) {
				return fmt.Errorf("stripped dump not found at %s. Run 'oeismatch sync' first", cfg.Paths.Stripped)
			}

			renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
				ui.WithForcePlain(plain),
				ui.WithNoColor(ui.DetectNoColor()),
			))
			if err := renderer.Start(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = renderer.Stop() }()

			start := time.Now()
			var timings ui.StageTimings

			// Stage 1+2: parse dumps and write the SQLite index.
			renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageParse, Message: "parsing " + cfg.Paths.Stripped})
			parseStart := time.Now()

			keywordsPath := cfg.Paths.Keywords
			if _, err := os.Stat(keywordsPath); os.IsNotExist(err) {
				keywordsPath = ""
			}
			namesPath := cfg.Paths.Names
			if _, err := os.Stat(namesPath); os.IsNotExist(err) {
				namesPath = ""
				renderer.AddError(ui.ErrorEvent{Err: fmt.Errorf("names dump missing, sequences will be unnamed"), IsWarn: true})
			}

			// The SQLite index and the name index read different dump
			// files and write different artifacts, so they build
			// concurrently.
			var stats ingest.BuildStats
			var g errgroup.Group
			g.Go(func() error {
				var err error
				stats, err = ingest.BuildIndex(ingest.BuildOptions{
					StrippedPath: cfg.Paths.Stripped,
					NamesPath:    namesPath,
					KeywordsPath: keywordsPath,
					DBPath:       cfg.Paths.DB,
					MaxTerms:     maxTerms,
					BatchSize:    batchSize,
				})
				if err == nil {
					timings.Parse = time.Since(parseStart)
				}
				return err
			})
			if !noText && namesPath != "" {
				renderer.UpdateProgress(ui.ProgressEvent{Stage: ui.StageTextIndex, Message: "building name index"})
				textStart := time.Now()
				g.Go(func() error {
					if err := buildNameIndex(cfg.Paths.NameIndex, namesPath, keywordsPath); err != nil {
						renderer.AddError(ui.ErrorEvent{Err: fmt.Errorf("name index build failed: %w", err), IsWarn: true})
					}
					timings.TextIndex = time.Since(textStart)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var dbSize int64
			if info, err := os.Stat(cfg.Paths.DB); err == nil {
				dbSize = info.Size()
			}

			renderer.Complete(ui.CompletionStats{
				Sequences: stats.Inserted,
				Named:     stats.TitlesApplied,
				Duration:  time.Since(start),
				Stages:    timings,
				DBPath:    cfg.Paths.DB,
				DBSize:    dbSize,
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&maxTerms, "max-terms", 0, "Truncate sequences to this many terms (0 = default)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "SQLite write batch size (0 = default)")
	cmd.Flags().BoolVar(&noText, "no-text", false, "Skip building the full-text name index")
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain-text progress output (no TUI)")
	return cmd
}

// buildNameIndex rebuilds the bleve name index from the names/keywords dumps.
func buildNameIndex(indexPath, namesPath, keywordsPath string) error {
	// Rebuild from scratch so deleted sequences disappear.
	if err := os.RemoveAll(indexPath); err != nil {
		return err
	}

	idx, err := textindex.Open(indexPath)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	names, err := ingest.LoadNames(namesPath)
	if err != nil {
		return err
	}
	keywords := map[string][]string{}
	if keywordsPath != "" {
		if kw, err := ingest.LoadKeywords(keywordsPath); err == nil {
			keywords = kw
		}
	}

	const batchSize = 5000
	batch := make([]textindex.Doc, 0, batchSize)
	for id, name := range names {
		batch = append(batch, textindex.Doc{ID: id, Name: name, Keywords: keywords[id]})
		if len(batch) == batchSize {
			if err := idx.IndexBatch(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return idx.IndexBatch(batch)
}
