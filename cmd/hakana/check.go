package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/slackhq/hakana-sub000/internal/analyzer"
	"github.com/slackhq/hakana-sub000/internal/codeinfo"
	"github.com/slackhq/hakana-sub000/internal/config"
	"github.com/slackhq/hakana-sub000/internal/diagnostics"
)

var checkCmd = &cobra.Command{
	Use:   "check [hakana.toml]",
	Short: "Run the analyzer over the configured file set",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=use config, then GOMAXPROCS)")
}

// runCheck loads hakana.toml, resolves its analysis paths into a file
// list, and runs that list through the analyzer's parallel scan. Since
// this repository implements the type engine and not a Hack parser
// (spec.md §1, §6 scope source parsing out of THE CORE), each file
// becomes an empty analyzer.Script — enough to exercise config loading,
// parallel dispatch and issue rendering end to end without pretending to
// parse real source.
func runCheck(cmd *cobra.Command, args []string) error {
	configPath := "hakana.toml"
	if len(args) == 1 {
		configPath = args[0]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var files []string
	for _, pattern := range cfg.Analysis.Paths {
		matches, globErr := filepath.Glob(pattern)
		if globErr != nil {
			return fmt.Errorf("%s: bad pattern %q: %w", configPath, pattern, globErr)
		}
		files = append(files, matches...)
	}
	files = excludeIgnored(files, cfg.Analysis.IgnorePaths)

	units := make([]analyzer.FileUnit, len(files))
	for i, f := range files {
		units[i] = analyzer.FileUnit{Path: f}
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = cfg.Analysis.Workers
	}

	cb := codeinfo.NewCodebase()
	result, err := analyzer.RunParallel(context.Background(), cb, analyzer.CombineUnions, analyzer.IntersectUnions,
		analyzer.IsContainedByFor(cb), units, jobs)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	var visible []diagnostics.Issue
	for _, iss := range result.Issues {
		if cfg.IsSuppressed(iss.Kind.String()) {
			continue
		}
		visible = append(visible, iss)
	}

	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	shown := visible
	if maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics"); maxDiag > 0 && len(shown) > maxDiag {
		shown = shown[:maxDiag]
	}
	diagnostics.Render(os.Stdout, shown, diagnostics.RenderOptions{Color: useColor})

	for _, iss := range visible {
		if iss.Severity == diagnostics.SeverityError {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return fmt.Errorf("")
		}
	}
	return nil
}

func excludeIgnored(files, ignorePatterns []string) []string {
	if len(ignorePatterns) == 0 {
		return files
	}
	var out []string
	for _, f := range files {
		ignored := false
		for _, pattern := range ignorePatterns {
			if matched, _ := filepath.Match(pattern, f); matched {
				ignored = true
				break
			}
		}
		if !ignored {
			out = append(out, f)
		}
	}
	return out
}
