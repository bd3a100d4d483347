package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/store"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage documents stored in the database",
}

var docsSaveCmd = &cobra.Command{
	Use:   "save <name> <yaml-file>",
	Short: "Store a document file under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		source, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		// A broken document must not reach the store.
		if _, err := document.Parse(source); err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		return s.Put(args[0], string(source))
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		names, err := s.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var docsRemoveCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Delete(args[0])
	},
}

func init() {
	docsCmd.AddCommand(docsSaveCmd, docsListCmd, docsRemoveCmd)
}

func openStore() (store.Store, error) {
	if flagDB == "" {
		return nil, fmt.Errorf("no database: use --db")
	}
	return store.NewSQLite(flagDB)
}
