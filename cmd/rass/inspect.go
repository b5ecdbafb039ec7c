package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeviLovie/rass"
)

var inspectDigests bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Show an archive's header and layout",
	Long: `Inspect prints the archive's format version and payload layout. With
--digests it also streams every file once to report a content digest per
entry, which is useful for auditing what shipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := rass.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading archive: %w", err)
		}
		defer a.Close()

		major, minor, patch := a.Version()
		fmt.Printf("Archive: %s\n", a.Path())
		fmt.Printf("Format version: %d.%d.%d\n", major, minor, patch)
		fmt.Printf("Files: %d\n", a.Len())

		var total uint64
		for _, path := range a.List() {
			e, _ := a.Entry(path)
			total += e.Size
		}
		fmt.Printf("Payload bytes: %d\n", total)

		if !inspectDigests {
			return nil
		}

		manifest, err := a.Manifest()
		if err != nil {
			return fmt.Errorf("computing digests: %w", err)
		}
		fmt.Println()
		for _, me := range manifest {
			fmt.Printf("%s  %12d  %s\n", me.Digest, me.Size, me.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectDigests, "digests", false, "compute a content digest per file")
}
