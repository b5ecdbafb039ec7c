package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeviLovie/rass"
)

var listLong bool

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the files packed in an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := rass.Load(args[0])
		if err != nil {
			return fmt.Errorf("loading archive: %w", err)
		}
		defer a.Close()

		for _, path := range a.List() {
			if listLong {
				e, _ := a.Entry(path)
				fmt.Printf("%12d  %12d  %s\n", e.Offset, e.Size, path)
			} else {
				fmt.Println(path)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "include each file's payload offset and size")
}
