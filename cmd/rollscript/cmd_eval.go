package main

import (
	"github.com/spf13/cobra"
)

var evalCollection string

var evalCmd = &cobra.Command{
	Use:   "eval <pattern>",
	Short: "Evaluate an arbitrary pattern, e.g. 'You meet {{2*npc}}'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		col, err := pickCollection(rt, evalCollection)
		if err != nil {
			return err
		}
		res, err := rt.Evaluate(col, args[0])
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalCollection, "collection", "c", "", "Collection to evaluate in (defaults to the document's first)")
}
