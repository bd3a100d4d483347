package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resultsLimit int

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show recent generation results for the loaded document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		entries, err := rt.Results(resultsLimit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %-20s %s\n", e.Ts, e.Ref, e.Output)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 20, "Maximum results to show")
}
