package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rahidz/oeismatcher/internal/daemon"
	"github.com/rahidz/oeismatcher/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index and daemon status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			info := ui.StatusInfo{
				IndexPath:     cfg.Paths.DB,
				DaemonStatus:  "stopped",
				WatcherStatus: "n/a",
				DumpDir:       filepath.Dir(cfg.Paths.Stripped),
			}

			if fi, err := os.Stat(cfg.Paths.DB); err == nil {
				info.IndexSize = fi.Size()
				info.LastBuilt = fi.ModTime()

				st, err := openStore(cfg)
				if err == nil {
					if stats, err := st.Stats(); err == nil {
						info.TotalSequences = stats.Count
						info.MinLength = stats.MinLength
						info.MaxLength = stats.MaxLength
					}
					_ = st.Close()
				}
			}

			if fi, err := os.Stat(cfg.Paths.NameIndex); err == nil && fi.IsDir() {
				info.TextIndexSize = dirSize(cfg.Paths.NameIndex)
			}

			client := daemon.NewClient(daemon.DefaultConfig())
			if client.IsRunning() {
				info.DaemonStatus = "running"
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor())
			if jsonOutput {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

// dirSize sums the sizes of all regular files under dir.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
