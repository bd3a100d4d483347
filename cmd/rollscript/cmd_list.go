package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the document's collections, tables, and templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		for _, col := range rt.Document().Collections {
			fmt.Println(col.ID)
			for _, tbl := range col.Tables {
				line := fmt.Sprintf("  table    %s (%d entries)", tbl.ID, len(tbl.Entries))
				if tbl.Description != "" {
					line += " - " + tbl.Description
				}
				fmt.Println(line)
			}
			for _, tpl := range col.Templates {
				line := fmt.Sprintf("  template %s", tpl.ID)
				if tpl.Description != "" {
					line += " - " + tpl.Description
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}
