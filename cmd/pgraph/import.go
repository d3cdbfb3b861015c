package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matsen/papergraph/internal/analysis"
	"github.com/matsen/papergraph/internal/importer"
	"github.com/matsen/papergraph/internal/reference"
	"github.com/matsen/papergraph/internal/storage"
	"github.com/spf13/cobra"
)

var (
	importFormat  string
	importDryRun  bool
	importReplace bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "paperpile", "Import format (paperpile)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace papers whose id is already stored instead of skipping them")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import papers from an external format",
	Long: `Import papers from an external format, analyzing each title and abstract.

Usage:
  pgraph import export.json
  pgraph import --format paperpile export.json --dry-run

Supported formats:
  paperpile  - Paperpile JSON export`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	DryRun   bool        `json:"dry_run,omitempty"`
	Added    int         `json:"added"`
	Replaced int         `json:"replaced"`
	Skipped  int         `json:"skipped"`
	Errors   []string    `json:"errors"`
	Details  []AddResult `json:"details,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	if importFormat != "paperpile" {
		exitWithError(ExitError, "unknown format: %s", importFormat)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}

	records, parseErrs := importer.ParsePaperpile(data)
	if len(records) == 0 && len(parseErrs) > 0 {
		exitWithError(ExitDataError, "%v", parseErrs[0])
	}

	existing := mustReadEntries(repoRoot)
	entries, result := planImport(cmd.Context(), existing, records, analysis.NewHeuristic(appLog), importReplace)
	for _, e := range parseErrs {
		result.Errors = append(result.Errors, e.Error())
	}
	result.DryRun = importDryRun

	if !importDryRun {
		mustAppendEntries(repoRoot, entries)
	}

	if humanOutput {
		verb := "Imported"
		if importDryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %d new, %d replaced, %d skipped\n", verb, result.Added, result.Replaced, result.Skipped)
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// planImport analyzes records and decides, per record, whether it is added,
// replaced, or skipped. Records repeated within one file count once.
func planImport(ctx context.Context, existing []reference.Entry, records []reference.PaperRecord, a analysis.Analyzer, replace bool) ([]reference.Entry, ImportResult) {
	result := ImportResult{Errors: []string{}}
	var entries []reference.Entry

	for _, rec := range records {
		action := actionFor(existing, reference.Entry{Paper: rec})
		if _, dup := storage.FindByID(entries, rec.ID); dup || (action == "replaced" && !replace) {
			result.Skipped++
			result.Details = append(result.Details, AddResult{ID: rec.ID, Title: rec.Title, Action: "skipped", Reason: "already stored"})
			continue
		}

		e, err := newEntry(ctx, a, rec)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		entries = append(entries, e)
		result.Details = append(result.Details, newAddResult(e, action))
		if action == "replaced" {
			result.Replaced++
		} else {
			result.Added++
		}
	}
	return entries, result
}
