// Command rollscript is the random-table generator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nickandperla.net/rollscript/pkg/rollscript"
)

var (
	flagFile  string
	flagDB    string
	flagDoc   string
	flagSeed  int64
	flagTrace bool
)

var rootCmd = &cobra.Command{
	Use:   "rollscript",
	Short: "Evaluate rollscript random-table documents",
	Long: "rollscript rolls weighted random tables and evaluates generation\n" +
		"templates from YAML documents, with captures, placeholders, and\n" +
		"conditional expressions.",
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Document YAML file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagDoc, "doc", "", "Stored document name (requires --db)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Deterministic random seed (0 means random)")
	rootCmd.PersistentFlags().BoolVar(&flagTrace, "trace", false, "Print the execution trace as JSON")

	rootCmd.AddCommand(rollCmd, evalCmd, validateCmd, listCmd, docsCmd, resultsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRuntime assembles a runtime from the persistent flags.
func newRuntime() (*rollscript.Runtime, error) {
	var opts []rollscript.Option
	if flagDB != "" {
		opts = append(opts, rollscript.WithSQLiteStore(flagDB))
	}
	switch {
	case flagFile != "":
		opts = append(opts, rollscript.WithDocumentFile(flagFile))
	case flagDoc != "":
		opts = append(opts, rollscript.WithStoredDocument(flagDoc))
	default:
		return nil, fmt.Errorf("no document: use --file or --doc")
	}
	if flagSeed != 0 {
		opts = append(opts, rollscript.WithSeed(flagSeed))
	}
	if flagTrace {
		opts = append(opts, rollscript.WithTrace())
	}
	return rollscript.New(opts...)
}

// printResult writes the generated text plus any diagnostics and, when
// enabled, the trace tree.
func printResult(res *rollscript.Result) error {
	fmt.Println(res.Text)
	for _, d := range res.Descriptions {
		fmt.Fprintf(os.Stderr, "note: %s: %s\n", d.Value, d.Description)
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "diag: %s\n", d.Message)
	}
	if flagTrace && res.Trace != nil {
		data, err := traceJSON(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, string(data))
	}
	return nil
}
