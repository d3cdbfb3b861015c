package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/papergraph/internal/analysis"
	"github.com/matsen/papergraph/internal/arxiv"
	"github.com/matsen/papergraph/internal/reference"
	"github.com/spf13/cobra"
)

var (
	arxivMax    int
	arxivCommit bool
)

func init() {
	arxivSearchCmd.Flags().IntVarP(&arxivMax, "max", "n", 0, "Maximum results (default from config)")
	arxivSearchCmd.Flags().BoolVar(&arxivCommit, "add", false, "Store every result in the library")
	arxivCmd.AddCommand(arxivSearchCmd)
	arxivCmd.AddCommand(arxivAddCmd)
	rootCmd.AddCommand(arxivCmd)
}

var arxivCmd = &cobra.Command{
	Use:   "arxiv",
	Short: "Search arXiv and add papers from it",
	Long:  `Query the arXiv API. Requests are rate limited to one every three seconds.`,
}

var arxivSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search arXiv",
	Long: `Search arXiv. Plain queries search all fields; arXiv field prefixes
such as ti:, au:, abs:, and cat: are passed through.

Examples:
  pgraph arxiv search "graph neural networks"
  pgraph arxiv search "au:hinton AND ti:capsule" -n 5
  pgraph arxiv search "cat:cs.LG transformers" --add`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArxivSearch,
}

var arxivAddCmd = &cobra.Command{
	Use:   "add <id-or-url>...",
	Short: "Add arXiv papers by id or URL",
	Long: `Fetch each paper from arXiv, analyze its title and abstract, and store it.

Examples:
  pgraph arxiv add 1706.03762
  pgraph arxiv add https://arxiv.org/abs/1706.03762v5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArxivAdd,
}

// ArxivSearchResult is one search hit.
type ArxivSearchResult struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Year       int      `json:"year,omitempty"`
	Categories []string `json:"categories,omitempty"`
	PDFURL     string   `json:"pdf_url,omitempty"`
	Abstract   string   `json:"abstract,omitempty"`
}

func runArxivSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	limit := arxivMax
	if limit <= 0 {
		limit = cfg.ArxivMaxResults
	}

	client := arxiv.NewClient(arxiv.WithLogger(appLog))
	papers, err := client.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		exitWithError(arxivExitCode(err), "searching arXiv: %v", err)
	}

	if arxivCommit {
		results := storeArxivPapers(cmd.Context(), repoRoot, papers)
		if humanOutput {
			printAddResultsHuman(results)
		} else {
			outputJSON(results)
		}
		return nil
	}

	out := make([]ArxivSearchResult, 0, len(papers))
	for _, p := range papers {
		out = append(out, ArxivSearchResult{
			ID:         p.ID,
			Title:      p.Title,
			Authors:    p.Authors,
			Year:       p.Year(),
			Categories: p.Categories,
			PDFURL:     p.PDFURL,
			Abstract:   p.Abstract,
		})
	}

	if humanOutput {
		if len(out) == 0 {
			fmt.Println("No papers found")
		}
		for i, r := range out {
			fmt.Printf("[%d] %s (%d)\n", i+1, r.ID, r.Year)
			fmt.Printf("    %s\n", truncateString(r.Title, SearchTitleMaxLen))
			fmt.Printf("    %s\n\n", reference.FormatAuthors(r.Authors, 3))
		}
	} else {
		outputJSON(out)
	}
	return nil
}

func runArxivAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	client := arxiv.NewClient(arxiv.WithLogger(appLog))

	var papers []arxiv.Paper
	var results []AddResult
	for _, arg := range args {
		p, err := client.GetByID(cmd.Context(), arg)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				exitWithError(ExitError, "interrupted")
			}
			if !arxiv.IsNotFound(err) {
				exitWithError(arxivExitCode(err), "fetching %s: %v", arg, err)
			}
			results = append(results, AddResult{ID: arg, Action: "skipped", Reason: "not found on arXiv"})
			continue
		}
		papers = append(papers, *p)
	}

	results = append(results, storeArxivPapers(cmd.Context(), repoRoot, papers)...)
	if humanOutput {
		printAddResultsHuman(results)
	} else {
		outputJSON(results)
	}
	if len(papers) == 0 {
		exitWithError(ExitNotFound, "no papers found")
	}
	return nil
}

// storeArxivPapers analyzes and appends papers to the library.
func storeArxivPapers(ctx context.Context, repoRoot string, papers []arxiv.Paper) []AddResult {
	existing := mustReadEntries(repoRoot)
	analyzer := analysis.NewHeuristic(appLog)

	results := make([]AddResult, 0, len(papers))
	var entries []reference.Entry
	for _, p := range papers {
		e, err := newEntry(ctx, analyzer, p.ToRecord())
		if err != nil {
			results = append(results, AddResult{ID: p.ID, Title: p.Title, Action: "skipped", Reason: err.Error()})
			continue
		}
		results = append(results, newAddResult(e, actionFor(existing, e)))
		existing = append(existing, e)
		entries = append(entries, e)
	}
	mustAppendEntries(repoRoot, entries)
	return results
}

// arxivExitCode maps client errors onto exit codes.
func arxivExitCode(err error) int {
	switch {
	case arxiv.IsNotFound(err):
		return ExitNotFound
	case errors.Is(err, arxiv.ErrEmptyQuery):
		return ExitError
	default:
		return ExitRemoteError
	}
}
