package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/papergraph/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a papergraph library",
	Long: `Create a .papergraph directory holding config.json and an empty papers.jsonl.

The cache directory (SQLite index) is git-ignored; papers.jsonl is the file to commit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitConfigError, "already a papergraph library: %s", root)
	}

	if err := initLibrary(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized papergraph library in %s\n", config.PapergraphPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}

// initLibrary lays out .papergraph under root with a default config.
func initLibrary(root string) error {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", config.PapergraphDir, err)
	}
	if err := config.Default().Save(root); err != nil {
		return err
	}
	if err := os.WriteFile(config.PapersPath(root), nil, 0644); err != nil {
		return fmt.Errorf("creating %s: %w", config.PapersFile, err)
	}
	ignore := filepath.Join(config.PapergraphPath(root), ".gitignore")
	if err := os.WriteFile(ignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
