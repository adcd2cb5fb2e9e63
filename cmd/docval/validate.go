package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/presenter"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/runner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate front matter and regenerate the registry",
	Long: `Validate every document under the docs root. When no errors are found the
registry is regenerated, unless --pre-commit or --check is given.

Exit status is 1 when any error is reported. Warnings never fail the run.`,
	Example: `  docval validate
  docval validate --pre-commit
  docval validate --check --docs-dir documentation`,
	RunE: runValidate,
}

func init() {
	addModeFlags(validateCmd)
}

func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("pre-commit", false, "Validate only, never write the registry")
	cmd.Flags().Bool("check", false, "Fail when the registry on disk is out of date instead of writing it")
	cmd.MarkFlagsMutuallyExclusive("pre-commit", "check")
}

func modeFromFlags(cmd *cobra.Command) runner.Mode {
	if preCommit, _ := cmd.Flags().GetBool("pre-commit"); preCommit {
		return runner.ModePreCommit
	}
	if check, _ := cmd.Flags().GetBool("check"); check {
		return runner.ModeCheck
	}
	return runner.ModeGenerate
}

// configFromCommand resolves the run configuration and applies the
// capability switches, which have no config-file counterpart on the CLI
func configFromCommand(cmd *cobra.Command) (runner.Config, error) {
	cfg, err := runner.ConfigFromViper()
	if err != nil {
		return runner.Config{}, err
	}
	if off, _ := cmd.Flags().GetBool("no-fingerprint"); off {
		cfg.Similarity.Fingerprint = false
	}
	if off, _ := cmd.Flags().GetBool("no-fuzzy"); off {
		cfg.Similarity.FuzzyTitles = false
	}
	return cfg, nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	code, err := execute(cmd.Context(), cfg, modeFromFlags(cmd), presenter.New())
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// execute performs one run and reports it through p, returning the exit code
func execute(ctx context.Context, cfg runner.Config, mode runner.Mode, p presenter.Presenter) (int, error) {
	r, err := runner.New(cfg)
	if err != nil {
		return 1, errors.Wrap(err, "invalid configuration")
	}

	p.Info(fmt.Sprintf("Validating documentation in %s...", cfg.DocsDir))
	result, err := r.Run(ctx, mode)
	if err != nil {
		return 1, err
	}

	for _, notice := range result.Notices {
		p.Info(notice)
	}
	p.Info(fmt.Sprintf("Found %d documents with front-matter", len(result.Documents)))

	p.Findings(result.Errors, result.Warnings)

	switch mode {
	case runner.ModeGenerate:
		if result.RegistryWritten {
			p.Section("REGISTRY")
			p.Success(fmt.Sprintf("Registry generated: %s", cfg.RegistryPath))
			p.Info(fmt.Sprintf("  Total documents: %d", result.Registry.TotalDocs))
			p.Info(fmt.Sprintf("  By type: %s", formatCounts(result.Registry.ByType)))
			p.Info(fmt.Sprintf("  By status: %s", formatCounts(result.Registry.ByStatus)))
		} else {
			p.Warning("Skipping registry generation due to validation errors")
		}
	case runner.ModeCheck:
		if cmp := result.Comparison; cmp != nil {
			if cmp.UpToDate() {
				p.Success(fmt.Sprintf("Registry is up to date: %s", cfg.RegistryPath))
			} else {
				p.Section("REGISTRY DIFF")
				p.Info(strings.TrimRight(cmp.Diff, "\n"))
			}
		}
	}

	p.Summary(presenter.Summary{
		Documents: len(result.Documents),
		Errors:    len(result.Errors),
		Warnings:  len(result.Warnings),
	})

	return result.ExitCode(), nil
}

// formatCounts renders a count map as "a=1, b=2" in key order
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
