package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/papergraph/internal/reference"
	"github.com/matsen/papergraph/internal/storage"
	"github.com/spf13/cobra"
)

var (
	recordsLimit    int
	recordsAuthors  []string
	recordsTopic    string
	recordsYear     string
	recordsCategory string
)

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", DefaultSearchLimit, "Maximum results to return (0 for all)")
	recordsCmd.Flags().StringArrayVarP(&recordsAuthors, "author", "a", nil, "Filter by author name (repeatable, AND logic, prefix match)")
	recordsCmd.Flags().StringVar(&recordsTopic, "topic", "", "Filter by analyzed topic")
	recordsCmd.Flags().StringVar(&recordsYear, "year", "", "Filter by year: exact (2024), range (2020:2024), or open (2020: or :2024)")
	recordsCmd.Flags().StringVar(&recordsCategory, "category", "", "Filter by exact category")
	rootCmd.AddCommand(recordsCmd)
}

var recordsCmd = &cobra.Command{
	Use:   "records [query]",
	Short: "Full-text search over stored paper records",
	Long: `Search stored records through the SQLite full-text index.

The query matches titles, abstracts, authors, topics, and keywords. Unlike
'pgraph search', which matches graph node labels, this returns whole records.

Year syntax:
  --year 2024         - Exact year
  --year 2020:2024    - Range (inclusive)
  --year 2020:        - 2020 and later
  --year :2020        - 2020 and earlier

Examples:
  pgraph records transformer
  pgraph records -a Vaswani --year 2017:
  pgraph records --topic "Machine Learning" --category Physics`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecords,
}

func runRecords(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenIndex(repoRoot)
	defer db.Close()

	filters := storage.SearchFilters{
		Authors:  recordsAuthors,
		Topic:    recordsTopic,
		Category: recordsCategory,
	}
	if len(args) > 0 {
		filters.Keyword = args[0]
	}
	from, to, err := parseYearRange(recordsYear)
	if err != nil {
		exitWithError(ExitError, "invalid year format: %v", err)
	}
	filters.YearFrom, filters.YearTo = from, to

	entries, err := db.SearchWithFilters(filters, recordsLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}
	if entries == nil {
		entries = []reference.Entry{}
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No papers found")
			return nil
		}
		fmt.Printf("Found %d papers:\n\n", len(entries))
		for i, e := range entries {
			printEntrySummary(i+1, e)
		}
	} else {
		outputJSON(entries)
	}
	return nil
}

// parseYearRange parses a year specification into from/to values.
// Supported formats: "2024", "2020:2024", "2020:", ":2024"
func parseYearRange(spec string) (from, to int, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0, nil
	}

	if before, after, ok := strings.Cut(spec, ":"); ok {
		if before != "" {
			if from, err = strconv.Atoi(before); err != nil {
				return 0, 0, fmt.Errorf("invalid start year %q", before)
			}
		}
		if after != "" {
			if to, err = strconv.Atoi(after); err != nil {
				return 0, 0, fmt.Errorf("invalid end year %q", after)
			}
		}
		if from > 0 && to > 0 && from > to {
			return 0, 0, fmt.Errorf("start year %d is after end year %d", from, to)
		}
		return from, to, nil
	}

	year, err := strconv.Atoi(spec)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", spec)
	}
	return year, year, nil
}
