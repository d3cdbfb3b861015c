package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a stored paper record by id",
	Long: `Get a stored paper and its analysis by paper id.

Example:
  pgraph get 1706.03762`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenIndex(repoRoot)
	defer db.Close()

	id := args[0]
	entry, err := db.GetByID(id)
	if err != nil {
		exitWithError(ExitError, "getting paper: %v", err)
	}
	if entry == nil {
		exitWithError(ExitNotFound, "paper not found: %s", id)
	}

	if humanOutput {
		printEntryDetail(*entry)
	} else {
		outputJSON(entry)
	}
	return nil
}
