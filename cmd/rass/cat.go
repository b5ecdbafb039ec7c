package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeviLovie/rass"
)

var catRaw bool

var catCmd = &cobra.Command{
	Use:   "cat <archive> <path>",
	Short: "Print one archived file to stdout",
	Long: `Cat prints the named file's content to stdout. By default the content
must be valid UTF-8 text; use --raw to emit arbitrary bytes unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := rass.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading archive: %w", err)
		}
		defer a.Close()

		path := rass.NormalizePath(args[1])
		if catRaw {
			data, err := a.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			_, err = os.Stdout.Write(data)
			return err
		}

		text, err := a.ReadText(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().BoolVar(&catRaw, "raw", false, "write raw bytes without requiring UTF-8")
}
