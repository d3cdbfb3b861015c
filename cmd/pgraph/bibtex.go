package main

import (
	"fmt"
	"os"

	"github.com/matsen/papergraph/internal/export"
	"github.com/matsen/papergraph/internal/reference"
	"github.com/spf13/cobra"
)

var bibtexOutput string

func init() {
	bibtexCmd.Flags().StringVarP(&bibtexOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(bibtexCmd)
}

var bibtexCmd = &cobra.Command{
	Use:   "bibtex [id...]",
	Short: "Export stored papers as BibTeX",
	Long: `Export stored paper records as BibTeX entries keyed by paper id.
With no ids every stored paper is exported.

Examples:
  pgraph bibtex > library.bib
  pgraph bibtex 1706.03762 10.1000/xyz -o refs.bib`,
	RunE: runBibtex,
}

func runBibtex(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenIndex(repoRoot)
	defer db.Close()

	var papers []reference.PaperRecord
	if len(args) == 0 {
		entries, err := db.ListAll(0)
		if err != nil {
			exitWithError(ExitError, "listing papers: %v", err)
		}
		for _, e := range entries {
			papers = append(papers, e.Paper)
		}
	} else {
		for _, id := range args {
			e, err := db.GetByID(id)
			if err != nil {
				exitWithError(ExitError, "getting paper: %v", err)
			}
			if e == nil {
				exitWithError(ExitNotFound, "paper not found: %s", id)
			}
			papers = append(papers, e.Paper)
		}
	}

	out := export.ToBibTeXList(papers)
	if bibtexOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(bibtexOutput, []byte(out), 0644); err != nil {
		exitWithError(ExitError, "writing output file: %v", err)
	}
	if humanOutput {
		fmt.Printf("Exported %d papers to %s\n", len(papers), bibtexOutput)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: bibtexOutput})
	}
	return nil
}
