package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeviLovie/rass"
)

var buildMaxFiles int

var buildCmd = &cobra.Command{
	Use:   "build <source-dir> <archive>",
	Short: "Pack a directory tree into an archive",
	Long: `Build walks the source directory, packs every regular file into the
archive, and writes the result atomically. Paths inside the archive are
relative to the source directory with forward-slash separators.

Symbolic links and empty directories are not stored. Building twice from
the same source bytes produces byte-identical archives.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcDir, dest := args[0], args[1]

		maxFiles := cfg.MaxFiles
		if cmd.Flags().Changed("max-files") {
			maxFiles = buildMaxFiles
		}

		progress := newProgressBar(0, progressEnabled())
		start := time.Now()

		err := rass.Create(cmd.Context(), srcDir, dest,
			rass.CreateWithLogger(slog.Default()),
			rass.CreateWithMaxFiles(maxFiles),
			rass.CreateWithProgress(progress.Observe))
		progress.Finish()
		if err != nil {
			return fmt.Errorf("building archive: %w", err)
		}

		a, err := rass.Load(dest)
		if err != nil {
			return fmt.Errorf("verifying archive: %w", err)
		}
		defer a.Close()

		fmt.Printf("Packed %d files into %s in %.1fms\n",
			a.Len(), dest, float64(time.Since(start).Nanoseconds())/1000000.0)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().IntVar(&buildMaxFiles, "max-files", 0, "maximum number of files to pack (0 uses the configured default)")
}
