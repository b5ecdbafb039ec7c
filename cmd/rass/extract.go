package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeviLovie/rass"
)

var (
	extractPrefix    string
	extractWorkers   int
	extractOverwrite bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive> <dest-dir>",
	Short: "Extract archived files back onto the file system",
	Long: `Extract writes archived files under the destination directory, recreating
their archive-relative paths. Use --prefix to extract only one subtree.

Existing destination files are skipped unless --overwrite is set. Each file
is written atomically, so an interrupted extraction never leaves partially
written files behind.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := rass.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading archive: %w", err)
		}
		defer a.Close()

		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers = extractWorkers
		}

		progress := newProgressBar(a.Len(), progressEnabled())
		start := time.Now()

		stats, err := a.CopyDir(args[1], extractPrefix,
			rass.CopyWithOverwrite(extractOverwrite),
			rass.CopyWithWorkers(workers),
			rass.CopyWithProgress(progress.Observe))
		progress.Finish()
		if err != nil {
			return fmt.Errorf("extracting archive: %w", err)
		}

		fmt.Printf("Extracted %d files (%d bytes) in %.1fms, %d skipped\n",
			stats.FileCount, stats.TotalBytes,
			float64(time.Since(start).Nanoseconds())/1000000.0, stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractPrefix, "prefix", "", "extract only paths under this archive directory")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "number of concurrent extraction workers (0 uses the configured default)")
	extractCmd.Flags().BoolVar(&extractOverwrite, "overwrite", false, "replace existing destination files")
}
