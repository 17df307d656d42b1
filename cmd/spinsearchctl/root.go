// spinsearchctl drives moment-configuration searches from the command
// line: it loads a YAML run spec, bridges evaluation to an external
// command, and inspects stored runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "spinsearchctl",
	Short: "Population-based search for non-collinear magnetic moment configurations",
	Long: "spinsearchctl evolves atomic moment configurations against an external\n" +
		"energy evaluator and persists every evaluation for restartable runs.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(bestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
