package main

import (
	"fmt"
	"os"

	"github.com/matsen/papergraph/internal/config"
	"github.com/matsen/papergraph/internal/storage"
	"github.com/spf13/cobra"
)

var compactDryRun bool

func init() {
	compactCmd.Flags().BoolVar(&compactDryRun, "dry-run", false, "Report what would be dropped without rewriting")
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(compactCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the record index from papers.jsonl",
	Long: `Rebuild the SQLite record index from the JSONL source file.

Use this after pulling changes from git or if the database becomes corrupted.
Commands that query the index also rebuild it when papers.jsonl is newer.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Drop superseded entries from papers.jsonl",
	Long: `papers.jsonl is an ingestion log: re-adding a paper appends a new entry.
Compacting keeps only the latest entry per paper id. The rebuilt graph then
no longer carries edges that only superseded versions produced.`,
	Args: cobra.NoArgs,
	RunE: runCompact,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Papers int    `json:"papers"`
}

// CompactResult is the response for the compact command.
type CompactResult struct {
	Status  string `json:"status"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
	Dropped int    `json:"dropped"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromJSONL(config.PapersPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt record index with %d papers\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Papers: count})
	}
	return nil
}

func runCompact(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	entries := mustReadEntries(repoRoot)
	compacted := storage.Compact(entries)

	result := CompactResult{
		Status:  "compacted",
		Before:  len(entries),
		After:   len(compacted),
		Dropped: len(entries) - len(compacted),
	}
	if compactDryRun {
		result.Status = "dry_run"
	} else if result.Dropped > 0 {
		if err := storage.WriteAll(config.PapersPath(repoRoot), compacted); err != nil {
			exitWithError(ExitError, "writing papers: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("%d entries, %d after compaction (%d dropped)\n", result.Before, result.After, result.Dropped)
	} else {
		outputJSON(result)
	}
	return nil
}
