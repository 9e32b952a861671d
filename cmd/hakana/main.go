// Command hakana is a thin CLI around the analyzer engine (SPEC_FULL.md
// §9.3): it loads a hakana.toml, runs the bundled scripted walker, and
// prints the resulting diagnostics. It is deliberately thin — real
// source parsing, name resolution, and incremental caching are out of
// scope, exactly as spec.md §1 scopes them out of the engine itself.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hakana",
	Short: "A gradual static type checker",
	Long:  `hakana analyzes a codebase for type errors, dead code and tainted data flow.`,
}

func main() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(explainCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
