package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"nickandperla.net/rollscript/pkg/rollscript"
)

var flagCollection string

var rollCmd = &cobra.Command{
	Use:   "roll <table-or-template>",
	Short: "Roll a table or evaluate a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		col, err := pickCollection(rt, flagCollection)
		if err != nil {
			return err
		}
		res, err := rt.Roll(col, args[0])
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

func init() {
	rollCmd.Flags().StringVarP(&flagCollection, "collection", "c", "", "Collection to roll in (defaults to the document's first)")
}

// pickCollection defaults to the document's first collection.
func pickCollection(rt *rollscript.Runtime, requested string) (string, error) {
	if requested != "" {
		if rt.Document().Collection(requested) == nil {
			return "", fmt.Errorf("unknown collection %q", requested)
		}
		return requested, nil
	}
	cols := rt.Document().Collections
	if len(cols) == 0 {
		return "", fmt.Errorf("document has no collections")
	}
	return cols[0].ID, nil
}

func traceJSON(res *rollscript.Result) ([]byte, error) {
	return json.MarshalIndent(res.Trace, "", "  ")
}
